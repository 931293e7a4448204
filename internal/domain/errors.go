package domain

import "errors"

// Error kinds surfaced by the transaction workflow. Collaborators wrap these so
// callers can classify failures with errors.Is.
var (
	ErrInvalidRequest            = errors.New("invalid transaction request")
	ErrFraudCheckUnavailable     = errors.New("fraud check unavailable")
	ErrAlertDeliveryFailed       = errors.New("alert delivery failed")
	ErrPersistenceFailed         = errors.New("transaction persistence failed")
	ErrPaymentDeclined           = errors.New("payment declined")
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrNotFound                  = errors.New("transaction not found")
	ErrInvalidTransition         = errors.New("invalid status transition")
)
