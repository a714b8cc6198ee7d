package service

import (
	"log"

	"github.com/cleanforms/cleanforms-backend/internal/repository"
)

// ResendWorker drains delivery-log IDs from a job channel and re-attempts
// their transport. The AMQP consumer feeds the channel.
type ResendWorker struct {
	LogRepo  repository.DeliveryLogRepositoryInterface
	JobChan  <-chan int
	SendFunc SendFunc
}

// Constructor
func NewResendWorker(repo repository.DeliveryLogRepositoryInterface, jobChan <-chan int, sendFunc SendFunc) *ResendWorker {
	return &ResendWorker{
		LogRepo:  repo,
		JobChan:  jobChan,
		SendFunc: sendFunc,
	}
}

// Start begins processing jobs
func (w *ResendWorker) Start() {
	for deliveryID := range w.JobChan {
		if err := ProcessResend(w.LogRepo, w.SendFunc, deliveryID); err != nil {
			log.Println("Failed to resend delivery:", deliveryID, err)
		}
	}
}
