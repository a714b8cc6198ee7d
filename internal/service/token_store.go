// internal/service/token_store.go
package service

import (
    "fmt"
    "math/rand"
    "sync"
    "time"

    "github.com/google/uuid"
)

// SessionToken is handed out when a form is rendered and must come back
// with the submission when the form requires it. MathAnswer carries the
// expected result of the math challenge shown with the form.
type SessionToken struct {
    Token      string
    MathAnswer int
    ExpiresAt  time.Time
}

// TokenStore is an in-memory single-use token store with a TTL. Tokens
// are consumed on first verification, so a replayed submission fails.
type TokenStore struct {
    mu     sync.Mutex
    tokens map[string]SessionToken
    TTL    time.Duration
}

func NewTokenStore(ttl time.Duration) *TokenStore {
    return &TokenStore{
        tokens: make(map[string]SessionToken),
        TTL:    ttl,
    }
}

// Issue creates a fresh token together with a math challenge and returns
// both the token and the human-readable question.
func (s *TokenStore) Issue() (SessionToken, string) {
    a := rand.Intn(9) + 1
    b := rand.Intn(9) + 1
    tok := SessionToken{
        Token:      uuid.NewString(),
        MathAnswer: a + b,
        ExpiresAt:  time.Now().Add(s.TTL),
    }

    s.mu.Lock()
    s.tokens[tok.Token] = tok
    s.mu.Unlock()

    return tok, fmt.Sprintf("What is %d + %d?", a, b)
}

// Consume verifies and removes a token. A token can only be consumed
// once; expired or unknown tokens report false.
func (s *TokenStore) Consume(token string) (SessionToken, bool) {
    if token == "" {
        return SessionToken{}, false
    }

    s.mu.Lock()
    defer s.mu.Unlock()

    tok, ok := s.tokens[token]
    if !ok {
        return SessionToken{}, false
    }
    delete(s.tokens, token)

    if time.Now().After(tok.ExpiresAt) {
        return SessionToken{}, false
    }
    return tok, true
}

// Sweep drops expired tokens. Called periodically from main.
func (s *TokenStore) Sweep() {
    now := time.Now()
    s.mu.Lock()
    defer s.mu.Unlock()
    for key, tok := range s.tokens {
        if now.After(tok.ExpiresAt) {
            delete(s.tokens, key)
        }
    }
}
