package appErrors

import "fmt"

// ErrFormNotFound is a sentinel error
type ErrFormNotFound struct {
    FormID int
}

func (e *ErrFormNotFound) Error() string {
    return fmt.Sprintf("form with ID %d not found", e.FormID)
}

// Helper constructor
func NewFormNotFound(id int) error {
    return &ErrFormNotFound{FormID: id}
}

// ErrDeliveryNotFound is a sentinel error for missing delivery log rows
type ErrDeliveryNotFound struct {
    DeliveryID int
}

func (e *ErrDeliveryNotFound) Error() string {
    return fmt.Sprintf("delivery log entry with ID %d not found", e.DeliveryID)
}

func NewDeliveryNotFound(id int) error {
    return &ErrDeliveryNotFound{DeliveryID: id}
}
