package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/orders/backend/internal/alert"
	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/fraud"
	"github.com/vanshika/orders/backend/internal/payment"
)

// Repository is the storage contract required by the processor.
type Repository interface {
	Store(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

// PaymentResolver picks the processor for a payment method tag.
type PaymentResolver interface {
	Resolve(tag string) payment.Processor
}

// Dependencies groups the collaborators of a TransactionProcessor.
type Dependencies struct {
	Repository Repository
	Validator  Validator
	Fraud      fraud.Checker
	Alerts     alert.Sender
	Payments   PaymentResolver
	Logger     *slog.Logger
}

// Options tunes workflow behaviour.
type Options struct {
	// PersistFraudulent stores fraud-branch transactions after alerting.
	PersistFraudulent bool
}

// TransactionProcessor runs a request through fraud detection, persistence
// and payment.
type TransactionProcessor struct {
	repo      Repository
	validator Validator
	fraud     fraud.Checker
	alerts    alert.Sender
	payments  PaymentResolver
	logger    *slog.Logger
	opts      Options

	nowFn    func() time.Time
	idFn     func() int64
	userIDFn func() string
}

// NewTransactionProcessor validates deps and builds a processor. A nil
// Validator accepts everything and a nil Logger uses slog.Default.
func NewTransactionProcessor(deps Dependencies, opts Options) (*TransactionProcessor, error) {
	switch {
	case deps.Repository == nil:
		return nil, errors.New("transaction processor requires a repository")
	case deps.Fraud == nil:
		return nil, errors.New("transaction processor requires a fraud checker")
	case deps.Alerts == nil:
		return nil, errors.New("transaction processor requires an alert sender")
	case deps.Payments == nil:
		return nil, errors.New("transaction processor requires a payment resolver")
	}
	if deps.Validator == nil {
		deps.Validator = TransactionValidator{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &TransactionProcessor{
		repo:      deps.Repository,
		validator: deps.Validator,
		fraud:     deps.Fraud,
		alerts:    deps.Alerts,
		payments:  deps.Payments,
		logger:    deps.Logger,
		opts:      opts,
		nowFn:     time.Now,
		idFn:      domain.NewID,
		userIDFn:  uuid.NewString,
	}, nil
}

// WithClock overrides the time provider (used primarily in tests).
func (p *TransactionProcessor) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		p.nowFn = nowFn
	}
}

type stepOutcome int

const (
	stepContinue stepOutcome = iota
	stepHalt
)

type step struct {
	name string
	run  func(ctx context.Context, tx *domain.Transaction, logger *slog.Logger) (stepOutcome, error)
}

// Process runs the workflow for req.
//
// An invalid request returns domain.ErrInvalidRequest and a failed fraud
// check returns an error wrapping domain.ErrFraudCheckUnavailable; in both
// cases no transaction is returned. Every other failure is recorded in the
// returned transaction's Status.
func (p *TransactionProcessor) Process(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	if !p.validator.Validate(req) {
		return nil, domain.ErrInvalidRequest
	}

	tx := domain.NewTransaction(req, p.idFn(), p.userIDFn(), p.nowFn().UTC())
	logger := p.logger.With("transactionId", tx.ID, "paymentMethod", tx.PaymentMethod)

	steps := []step{
		{name: "fraud-check", run: p.checkFraud},
		{name: "persist-pre-payment", run: p.persist},
		{name: "payment", run: p.pay},
		{name: "persist-post-payment", run: p.persist},
	}
	for _, s := range steps {
		outcome, err := s.run(ctx, tx, logger)
		if err != nil {
			logger.Error("transaction aborted", "step", s.name, "error", err)
			return nil, err
		}
		if outcome == stepHalt {
			logger.Debug("transaction halted", "step", s.name, "status", tx.Status.String())
			break
		}
	}

	logger.Info("transaction processed",
		"status", tx.Status.String(),
		"fraudStatus", tx.FraudStatus,
		"terminal", tx.Status.Terminal(),
	)
	return tx, nil
}

func (p *TransactionProcessor) checkFraud(ctx context.Context, tx *domain.Transaction, logger *slog.Logger) (stepOutcome, error) {
	fraudulent, err := p.fraud.IsFraud(ctx, tx)
	if err != nil {
		if !errors.Is(err, domain.ErrFraudCheckUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrFraudCheckUnavailable, err)
		}
		return stepHalt, err
	}
	if !fraudulent {
		return stepContinue, nil
	}

	if !applied(logger, tx.MarkFraudulent()) {
		return stepHalt, nil
	}
	p.raiseAlert(ctx, tx, logger)
	if p.opts.PersistFraudulent {
		_, _ = p.persist(ctx, tx, logger)
	}
	return stepHalt, nil
}

func (p *TransactionProcessor) raiseAlert(ctx context.Context, tx *domain.Transaction, logger *slog.Logger) {
	if !applied(logger, tx.BeginAlert()) {
		return
	}
	if err := p.alerts.Send(ctx, tx); err != nil {
		if !errors.Is(err, domain.ErrAlertDeliveryFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrAlertDeliveryFailed, err)
		}
		logger.Error("fraud alert failed", "error", err)
		applied(logger, tx.FailAlert())
		return
	}
	applied(logger, tx.CompleteAlert())
}

// persist stores the transaction. Failures are logged and halt the workflow
// with the in-memory transaction untouched.
func (p *TransactionProcessor) persist(ctx context.Context, tx *domain.Transaction, logger *slog.Logger) (stepOutcome, error) {
	stored, err := p.repo.Store(ctx, tx)
	if err != nil {
		logger.Error("transaction not persisted",
			"status", tx.Status.String(),
			"error", fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err),
		)
		return stepHalt, nil
	}
	if stored != nil && stored.ID != 0 {
		tx.ID = stored.ID
	}
	return stepContinue, nil
}

func (p *TransactionProcessor) pay(ctx context.Context, tx *domain.Transaction, logger *slog.Logger) (stepOutcome, error) {
	if !applied(logger, tx.BeginPayment()) {
		return stepHalt, nil
	}

	processor := p.payments.Resolve(tx.PaymentMethod)
	err := processor.Pay(ctx, payment.Details(tx.Payment))
	finishedAt := p.nowFn().UTC()
	if err != nil {
		logger.Warn("payment failed", "error", err)
		applied(logger, tx.FailPayment(finishedAt))
		return stepContinue, nil
	}
	applied(logger, tx.CompletePayment(finishedAt))
	return stepContinue, nil
}

// applied logs a rejected status transition and reports whether it succeeded.
func applied(logger *slog.Logger, err error) bool {
	if err != nil {
		logger.Error("status transition rejected", "error", err)
		return false
	}
	return true
}
