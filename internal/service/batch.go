package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vanshika/orders/backend/internal/domain"
)

// TaskError accumulates multiple errors produced during a batch run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error { return e.Errors }

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Processor runs a single request through the workflow.
type Processor interface {
	Process(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error)
}

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Index       int
	Transaction *domain.Transaction
	Err         error
}

// Summary counts batch outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Fraud     int
	Failed    int
	// Incomplete counts transactions halted before a terminal status, for
	// example after a persistence failure.
	Incomplete int
	ByStatus   map[domain.Status]int
}

// BatchReport holds per-request results in input order.
type BatchReport struct {
	Results []BatchResult
	Summary Summary
}

// BatchProcessor processes many requests using a worker pool.
type BatchProcessor struct {
	processor Processor
	workers   int
}

// NewBatchProcessor creates a BatchProcessor with the provided concurrency.
func NewBatchProcessor(processor Processor, workers int) *BatchProcessor {
	if workers <= 0 {
		workers = 4
	}
	return &BatchProcessor{processor: processor, workers: workers}
}

// Run processes reqs concurrently. The returned error is ctx.Err() when the
// run was cancelled, otherwise a *TaskError listing requests that produced no
// transaction.
func (bp *BatchProcessor) Run(ctx context.Context, reqs []domain.TransactionRequest) (BatchReport, error) {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return BatchReport{Results: results, Summary: summarize(results)}, nil
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			tx, err := bp.processor.Process(ctx, reqs[idx])
			results[idx] = BatchResult{Index: idx, Transaction: tx, Err: err}
		}
	}

	for i := 0; i < bp.workers; i++ {
		wg.Add(1)
		go worker()
	}

	dispatched := 0
Loop:
	for ; dispatched < len(reqs); dispatched++ {
		select {
		case indexCh <- dispatched:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	for i := dispatched; i < len(reqs); i++ {
		results[i] = BatchResult{Index: i, Err: ctx.Err()}
	}

	report := BatchReport{Results: results, Summary: summarize(results)}
	if dispatched < len(reqs) {
		return report, ctx.Err()
	}

	var taskErr TaskError
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			return report, res.Err
		}
		taskErr.append(fmt.Errorf("request %d: %w", res.Index, res.Err))
	}
	return report, taskErr.asError()
}

func summarize(results []BatchResult) Summary {
	s := Summary{Total: len(results), ByStatus: make(map[domain.Status]int)}
	for _, res := range results {
		if res.Err != nil || res.Transaction == nil {
			s.Failed++
			continue
		}
		s.ByStatus[res.Transaction.Status]++
		if !res.Transaction.Status.Terminal() {
			s.Incomplete++
		}
		switch {
		case res.Transaction.Status == domain.StatusPaymentComplete:
			s.Succeeded++
		case res.Transaction.FraudStatus:
			s.Fraud++
		}
	}
	return s
}
