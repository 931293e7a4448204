package service

import (
	"encoding/json"
	"strings"

	"github.com/vanshika/orders/backend/internal/domain"
)

// Validator decides whether a request may enter the workflow. Implementations
// must be pure and must not panic on malformed input.
type Validator interface {
	Validate(req domain.TransactionRequest) bool
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(req domain.TransactionRequest) bool

// Validate implements Validator.
func (f ValidatorFunc) Validate(req domain.TransactionRequest) bool { return f(req) }

// TransactionValidator accepts every request.
type TransactionValidator struct{}

// Validate implements Validator.
func (TransactionValidator) Validate(domain.TransactionRequest) bool { return true }

// RequiredFieldsValidator requires a payment method and well-formed JSON
// order and payment payloads.
type RequiredFieldsValidator struct{}

// Validate implements Validator.
func (RequiredFieldsValidator) Validate(req domain.TransactionRequest) bool {
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return false
	}
	return validPayload(req.Order) && validPayload(req.Payment)
}

func validPayload(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null" && json.Valid(raw)
}

// AllOf accepts a request only when every validator accepts it.
func AllOf(validators ...Validator) Validator {
	return ValidatorFunc(func(req domain.TransactionRequest) bool {
		for _, v := range validators {
			if v != nil && !v.Validate(req) {
				return false
			}
		}
		return true
	})
}
