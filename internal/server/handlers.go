package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanshika/orders/backend/internal/domain"
)

const maxBodyBytes = 1 << 20

// TransactionProcessor runs the transaction workflow.
type TransactionProcessor interface {
	Process(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error)
}

// TransactionFinder loads stored transactions.
type TransactionFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger    *slog.Logger
	processor TransactionProcessor
	finder    TransactionFinder
}

// NewAPIHandlers constructs an APIHandlers instance. finder may be nil, in
// which case lookups answer 404.
func NewAPIHandlers(logger *slog.Logger, processor TransactionProcessor, finder TransactionFinder) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		processor: processor,
		finder:    finder,
	}
}

func (h *APIHandlers) handleTransact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, MessageBadRequest)
		return
	}
	req, err := DecodeTransactionRequest(body)
	if err != nil {
		h.logger.Warn("rejected transaction request", "error", err)
		writeMessage(w, http.StatusBadRequest, MessageBadRequest)
		return
	}

	// The workflow keeps running if the client disconnects.
	tx, err := h.processor.Process(context.WithoutCancel(r.Context()), req)
	if err != nil {
		h.logger.Error("transaction processing failed", "error", err, "paymentMethod", req.PaymentMethod)
	}
	status, payload := TransactionResponse(tx, err)
	respondJSON(w, status, payload)
}

func (h *APIHandlers) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rawID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/transactions/"), "/")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, MessageBadRequest)
		return
	}
	if h.finder == nil {
		writeMessage(w, http.StatusNotFound, MessageNotFound)
		return
	}

	tx, err := h.finder.FindByID(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, MessageNotFound)
	case err != nil:
		h.logger.Error("failed to fetch transaction", "error", err, "transactionId", id)
		writeMessage(w, http.StatusInternalServerError, MessageFailure)
	default:
		respondJSON(w, http.StatusOK, newTransactionView(tx))
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, messageResponse{Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
