package domain

import "fmt"

// Status is the processing state of a Transaction.
type Status int

// Status codes are part of the wire contract and must not be renumbered.
const (
	StatusPending          Status = 11
	StatusFraudulent       Status = 12
	StatusAlertInitiated   Status = 13
	StatusAlertError       Status = 14
	StatusAlertDone        Status = 15
	StatusPaymentInitiated Status = 16
	StatusPaymentError     Status = 17
	StatusPaymentComplete  Status = 18
)

var statusNames = map[Status]string{
	StatusPending:          "TRANSACTION_PENDING",
	StatusFraudulent:       "TRANSACTION_FRAUDULENT",
	StatusAlertInitiated:   "TRANSACTION_ALERT_INITIATED",
	StatusAlertError:       "TRANSACTION_ALERT_ERROR",
	StatusAlertDone:        "TRANSACTION_ALERT_DONE",
	StatusPaymentInitiated: "TRANSACTION_PAYMENT_INITIATED",
	StatusPaymentError:     "TRANSACTION_PAYMENT_ERROR",
	StatusPaymentComplete:  "TRANSACTION_PAYMENT_COMPLETE",
}

// transitions lists the only permitted moves of the state machine.
var transitions = map[Status][]Status{
	StatusPending:          {StatusFraudulent, StatusPaymentInitiated},
	StatusFraudulent:       {StatusAlertInitiated},
	StatusAlertInitiated:   {StatusAlertDone, StatusAlertError},
	StatusPaymentInitiated: {StatusPaymentComplete, StatusPaymentError},
}

// String returns the TRANSACTION_* name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TRANSACTION_UNKNOWN(%d)", int(s))
}

// Valid reports whether s is one of the defined codes.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusAlertDone, StatusAlertError, StatusPaymentComplete, StatusPaymentError:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next directly follows s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus resolves a TRANSACTION_* name back to its Status.
func ParseStatus(name string) (Status, error) {
	for status, candidate := range statusNames {
		if candidate == name {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction status %q", name)
}
