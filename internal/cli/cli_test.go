package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/orders/backend/internal/app"
	"github.com/vanshika/orders/backend/internal/config"
	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/generator"
)

func sqliteOpener(t *testing.T) AppOpener {
	t.Helper()
	cfg := config.Defaults()
	cfg.Store.Backend = config.StoreSQLite
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "orders.db")
	cfg.Fraud.Rate = 1e-12
	cfg.Fraud.MinDelay, cfg.Fraud.MaxDelay = 0, 0
	cfg.Payment.MinDelay, cfg.Payment.MaxDelay = 0, 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg, logger)
	}
}

func run(t *testing.T, opts Options, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	opts.Out = &out
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerate_WritesToStdout(t *testing.T) {
	out, err := run(t, Options{}, "generate", "--count", "3", "--seed", "9")
	require.NoError(t, err)

	var reqs []domain.TransactionRequest
	require.NoError(t, json.Unmarshal([]byte(out), &reqs))
	assert.Len(t, reqs, 3)
}

func TestGenerate_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqs.json")
	out, err := run(t, Options{}, "generate", "--count", "4", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 4 requests")

	reqs, err := generator.ReadRequests(path)
	require.NoError(t, err)
	assert.Len(t, reqs, 4)
}

func TestBatchThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqs.json")
	_, err := run(t, Options{}, "generate", "--count", "5", "--out", path)
	require.NoError(t, err)

	opener := sqliteOpener(t)
	out, err := run(t, Options{OpenApp: opener}, "batch", "--file", path, "--workers", "2", "--details")
	require.NoError(t, err)
	assert.Contains(t, out, "TRANSACTION_PAYMENT_COMPLETE")
	assert.Contains(t, out, "succeeded=5 fraud=0 failed=0 incomplete=0")

	a, err := opener(context.Background())
	require.NoError(t, err)
	ids := storedIDs(t, a)
	require.NoError(t, a.Close())
	require.NotEmpty(t, ids)

	out, err = run(t, Options{OpenApp: opener}, "get", strconv.FormatInt(ids[0], 10))
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &stored))
	assert.Equal(t, "TRANSACTION_PAYMENT_COMPLETE", stored["statusName"])
}

func TestBatch_RequiresFile(t *testing.T) {
	_, err := run(t, Options{OpenApp: sqliteOpener(t)}, "batch")
	assert.ErrorContains(t, err, "--file")
}

func TestGet_UnknownID(t *testing.T) {
	_, err := run(t, Options{OpenApp: sqliteOpener(t)}, "get", "12345")
	assert.ErrorContains(t, err, "not found")
}

func TestGet_InvalidID(t *testing.T) {
	_, err := run(t, Options{OpenApp: sqliteOpener(t)}, "get", "abc")
	assert.ErrorContains(t, err, "invalid transaction id")
}

func storedIDs(t *testing.T, a *app.App) []int64 {
	t.Helper()
	lister, ok := a.Repository.(interface {
		IDs(ctx context.Context) ([]int64, error)
	})
	require.True(t, ok, "repository %T cannot list ids", a.Repository)
	ids, err := lister.IDs(context.Background())
	require.NoError(t, err)
	return ids
}

func TestBatch_StatusFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqs.json")
	_, err := run(t, Options{}, "generate", "--count", "3", "--out", path)
	require.NoError(t, err)

	out, err := run(t, Options{OpenApp: sqliteOpener(t)}, "batch", "--file", path, "--status", "TRANSACTION_PAYMENT_ERROR")
	require.NoError(t, err)
	assert.NotContains(t, out, "paytm")
	assert.NotContains(t, out, "icici-debit")
	assert.Contains(t, out, "succeeded=3")

	_, err = run(t, Options{OpenApp: sqliteOpener(t)}, "batch", "--file", path, "--status", "TRANSACTION_NOPE")
	assert.ErrorContains(t, err, "unknown transaction status")
}
