// internal/service/delivery_service.go
package service

import (
    "fmt"

    appErrors "github.com/cleanforms/cleanforms-backend/internal/errors"
    "github.com/cleanforms/cleanforms-backend/internal/model"
    "github.com/cleanforms/cleanforms-backend/internal/queue"
    "github.com/cleanforms/cleanforms-backend/internal/repository"
)

// DeliveryService backs the operator-facing delivery log endpoints: list,
// inspect, and queue failed entries for another transport attempt.
type DeliveryService struct {
    LogRepo repository.DeliveryLogRepositoryInterface
    Queue   queue.Publisher
}

// ListDeliveries fetches delivery log entries with pagination
func (s *DeliveryService) ListDeliveries(filter repository.DeliveryLogFilter, page, pageSize int) ([]model.DeliveryLogEntry, map[string]int, error) {
    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 20
    }
    if pageSize > 100 {
        pageSize = 100
    }
    offset := (page - 1) * pageSize

    entries, total, err := s.LogRepo.List(filter, offset, pageSize)
    if err != nil {
        return nil, nil, err
    }

    totalPages := (total + pageSize - 1) / pageSize
    pagination := map[string]int{
        "page":        page,
        "page_size":   pageSize,
        "total_count": total,
        "total_pages": totalPages,
    }

    return entries, pagination, nil
}

// GetDelivery fetches one delivery log entry by ID
func (s *DeliveryService) GetDelivery(id int) (*model.DeliveryLogEntry, error) {
    entry, err := s.LogRepo.GetByID(id)
    if err != nil {
        return nil, err
    }
    if entry == nil {
        return nil, appErrors.NewDeliveryNotFound(id)
    }
    return entry, nil
}

// ResendDelivery queues a failed entry for another transport attempt.
// Only failed rows are resendable; pending and sent rows are refused.
func (s *DeliveryService) ResendDelivery(id int) error {
    entry, err := s.GetDelivery(id)
    if err != nil {
        return err
    }
    if entry.Status != model.DeliveryStatusFailed {
        return fmt.Errorf("delivery %d cannot be resent in status: %s", id, entry.Status)
    }
    return s.Queue.Publish(queue.TopicDeliveryResends, id)
}

// ProcessResend is the shared resend body used by the in-memory
// subscriber and the AMQP worker: re-attempt transport and flip the row.
func ProcessResend(logRepo repository.DeliveryLogRepositoryInterface, send SendFunc, deliveryID int) error {
    entry, err := logRepo.GetByID(deliveryID)
    if err != nil {
        return err
    }
    if entry == nil {
        return nil // row vanished, nothing to retry
    }

    if err := send(entry); err != nil {
        if uerr := logRepo.UpdateStatus(entry.ID, model.DeliveryStatusFailed, err.Error()); uerr != nil {
            return uerr
        }
        return err
    }
    return logRepo.UpdateStatus(entry.ID, model.DeliveryStatusSent, "")
}
