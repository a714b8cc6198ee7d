package queue

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Topic the resend flow publishes failed delivery-log IDs to.
const TopicDeliveryResends = "delivery_resends"

// Publisher is the producer side of the queue. The delivery service only
// needs this half; consumers live in-process or in cmd/worker.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Queue interface
type Queue interface {
	Publisher
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry, used when no AMQP
// broker is configured.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// maxRetries bounds how often a job is re-handed to a subscriber before
// it is dropped.
const maxRetries = 3

// Publish hands the payload to every subscriber of the topic. Each
// subscriber runs on its own goroutine with independent retries.
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go q.runWithRetry(topic, handler, payload)
	}
	return nil
}

// runWithRetry invokes the handler until it succeeds or the retry budget
// runs out, backing off between attempts.
func (q *InMemoryQueue) runWithRetry(topic string, handler func(payload any) error, payload any) {
	for attempt := 1; ; attempt++ {
		err := handler(payload)
		if err == nil {
			return
		}

		log.Printf("Job on %s failed (attempt %d/%d): %+v, error: %v\n", topic, attempt, maxRetries, payload, err)
		if attempt >= maxRetries {
			log.Printf("Job on %s dropped after %d attempts: %+v\n", topic, maxRetries, payload)
			return
		}
		time.Sleep(time.Duration(attempt*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartDeliveryResendSubscriber wires the in-memory resend consumer. The
// process func is the same one the AMQP worker uses.
func StartDeliveryResendSubscriber(q Queue, process func(deliveryID int) error) {
	go func() {
		err := q.Subscribe(TopicDeliveryResends, func(payload any) error {
			deliveryID, ok := payload.(int)
			if !ok {
				log.Println("⚠️ Invalid payload type, expected int")
				return nil
			}

			log.Println("📩 Re-sending delivery log entry ID:", deliveryID)
			return process(deliveryID)
		})

		if err != nil {
			log.Println("⚠️ Failed to start subscriber for", TopicDeliveryResends, ":", err)
		}
	}()
}
