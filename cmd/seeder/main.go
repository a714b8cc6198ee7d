//cmd/seeder/main.go
package main

import (
    "flag"
    "log"
    "os"
    "path/filepath"

    "github.com/joho/godotenv"

    "github.com/cleanforms/cleanforms-backend/internal/db"
)

// Applies seed/schema.sql then seed/forms.sql against the configured
// database. Both files are idempotent (IF NOT EXISTS / ON CONFLICT), so
// running the seeder twice is safe.
func main() {
    seedDir := flag.String("dir", "seed", "directory holding the seed SQL files")
    flag.Parse()

    if err := godotenv.Load(); err != nil {
        log.Println("⚠️ No .env file found, relying on OS environment variables")
    }
    db.Init()

    for _, name := range []string{"schema.sql", "forms.sql"} {
        path := filepath.Join(*seedDir, name)
        content, err := os.ReadFile(path)
        if err != nil {
            log.Fatalf("failed to read %s: %v", path, err)
        }
        if _, err := db.DB.Exec(string(content)); err != nil {
            log.Fatalf("failed to execute %s: %v", path, err)
        }
        log.Println("✅ Seeded:", path)
    }

    log.Println("✅ Database seeding completed")
}
