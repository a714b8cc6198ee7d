// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/cleanforms/cleanforms-backend/internal/controller"
	"github.com/cleanforms/cleanforms-backend/internal/db"
	"github.com/cleanforms/cleanforms-backend/internal/handler"
	"github.com/cleanforms/cleanforms-backend/internal/queue"
	"github.com/cleanforms/cleanforms-backend/internal/repository"
	"github.com/cleanforms/cleanforms-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	formRepo := &repository.FormRepository{DB: db.DB}
	submissionRepo := &repository.SubmissionRepository{DB: db.DB}
	deliveryLogRepo := &repository.DeliveryLogRepository{DB: db.DB}

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if smtpPort == 0 {
		smtpPort = 587
	}
	sender := service.NewGomailSender(
		os.Getenv("SMTP_HOST"),
		smtpPort,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASSWORD"),
	)

	tokens := service.NewTokenStore(30 * time.Minute)
	go func() {
		for range time.Tick(5 * time.Minute) {
			tokens.Sweep()
		}
	}()

	tags := service.NewTagRegistry(
		service.UserTagResolver{},
		service.PostTagResolver{},
		service.QueryTagResolver{},
	)

	verifyClient := service.NewVerifyClient()

	// Validator order matters: required/email run before the anti-abuse
	// extensions.
	chain := service.NewValidationChain(
		service.RequiredFieldsValidator{},
		service.EmailFieldsValidator{},
		service.RequireLoginValidator{},
		service.SubmissionLimitValidator{Counter: formRepo},
		service.RecaptchaValidator{Secret: os.Getenv("RECAPTCHA_SECRET"), Client: verifyClient},
		service.TurnstileValidator{Secret: os.Getenv("TURNSTILE_SECRET"), Client: verifyClient},
		service.MathCaptchaValidator{},
		service.SpamCheckValidator{URL: os.Getenv("SPAMCHECK_URL"), Client: verifyClient},
	)

	dispatcher := service.NewDispatcher(
		&service.EmailHandler{Log: deliveryLogRepo, Send: sender, Tags: tags},
		&service.AutoresponderHandler{Log: deliveryLogRepo, Send: sender, Tags: tags},
		service.NewWebhookHandler(tags),
	)

	submissionService := &service.SubmissionService{
		FormRepo:       formRepo,
		SubmissionRepo: submissionRepo,
		Gate:           service.NewGate(tokens),
		Normalizer: service.NewNormalizer(tags,
			service.RecaptchaResponseField,
			service.TurnstileResponseField,
		),
		Chain:      chain,
		Dispatcher: dispatcher,
		Tags:       tags,
	}

	// With a broker configured, resend jobs go to RabbitMQ and cmd/worker
	// consumes them. Without one they are handled in-process.
	var resendQueue queue.Publisher
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		resendQueue = queue.NewAMQPQueue(amqpURL)
	} else {
		inMem := queue.NewInMemoryQueue()
		queue.StartDeliveryResendSubscriber(inMem, func(deliveryID int) error {
			return service.ProcessResend(deliveryLogRepo, sender, deliveryID)
		})
		resendQueue = inMem
	}

	deliveryService := &service.DeliveryService{
		LogRepo: deliveryLogRepo,
		Queue:   resendQueue,
	}

	submissionController := &controller.SubmissionController{
		SubmissionService: submissionService,
		Tokens:            tokens,
	}

	deliveryHandler := &handler.DeliveryHandler{Service: deliveryService}
	submissionHandler := &handler.SubmissionHandler{Repo: submissionRepo}
	formHandler := &handler.FormHandler{Repo: formRepo}

	r := chi.NewRouter()

	// Public intake
	r.Get("/forms/slug/{slug}", formHandler.GetFormHandler)
	r.Get("/forms/{formID}/token", submissionController.HandleToken)
	r.Post("/forms/{formID}/submissions", submissionController.HandleSubmit)

	// Admin
	r.Post("/forms", formHandler.CreateFormHandler)
	r.Get("/forms/{formID}/submissions", submissionHandler.ListSubmissionsHandler)
	r.Get("/submissions/{id}", submissionHandler.GetSubmissionHandler)
	r.Get("/deliveries", deliveryHandler.ListDeliveriesHandler)
	r.Get("/deliveries/{id}", deliveryHandler.GetDeliveryHandler)
	r.Post("/deliveries/{id}/resend", deliveryHandler.ResendDeliveryHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
