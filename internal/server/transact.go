package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vanshika/orders/backend/internal/domain"
)

// Response messages returned by the transaction endpoints.
const (
	MessageBadRequest = "Bad Request"
	MessageFailure    = "Something Bad Happened"
	MessageSuccess    = "Transaction Successfull"
	MessageNotFound   = "Not Found"
)

var requiredKeys = []string{"order", "paymentMethod", "payment"}

// DecodeTransactionRequest parses a POST /transact body. The body must be a
// JSON object carrying order, paymentMethod and payment. A string
// paymentMethod is used as the tag; any other JSON value is used verbatim.
func DecodeTransactionRequest(body []byte) (domain.TransactionRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.TransactionRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if fields == nil {
		return domain.TransactionRequest{}, fmt.Errorf("%w: body is not an object", domain.ErrInvalidRequest)
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return domain.TransactionRequest{}, fmt.Errorf("%w: missing %q", domain.ErrInvalidRequest, key)
		}
	}

	return domain.TransactionRequest{
		Order:         fields["order"],
		PaymentMethod: paymentTag(fields["paymentMethod"]),
		Payment:       fields["payment"],
	}, nil
}

func paymentTag(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err == nil {
			return tag
		}
	}
	return string(trimmed)
}

type messageResponse struct {
	Message string `json:"message"`
}

type successResponse struct {
	Message       string `json:"message"`
	TransactionID int64  `json:"transactionID"`
}

type transactionStatus struct {
	Code        int    `json:"code"`
	Status      string `json:"status"`
	FraudStatus bool   `json:"fraudStatus"`
}

type failureResponse struct {
	Message           string            `json:"message"`
	TransactionStatus transactionStatus `json:"transactionStatus"`
}

// TransactionResponse maps the outcome of a workflow run to an HTTP status
// code and JSON body.
func TransactionResponse(tx *domain.Transaction, err error) (int, any) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, messageResponse{Message: MessageBadRequest}
	case err != nil || tx == nil:
		return http.StatusInternalServerError, messageResponse{Message: MessageFailure}
	case tx.Status != domain.StatusPaymentComplete:
		return http.StatusInternalServerError, failureResponse{
			Message: MessageFailure,
			TransactionStatus: transactionStatus{
				Code:        int(tx.Status),
				Status:      tx.Status.String(),
				FraudStatus: tx.FraudStatus,
			},
		}
	default:
		return http.StatusOK, successResponse{Message: MessageSuccess, TransactionID: tx.ID}
	}
}

type transactionView struct {
	domain.Snapshot
	StatusName string `json:"statusName"`
}

func newTransactionView(tx *domain.Transaction) transactionView {
	return transactionView{Snapshot: tx.Snapshot(), StatusName: tx.Status.String()}
}
