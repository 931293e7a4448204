// Package app assembles the transaction service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vanshika/orders/backend/internal/alert"
	"github.com/vanshika/orders/backend/internal/config"
	"github.com/vanshika/orders/backend/internal/fraud"
	"github.com/vanshika/orders/backend/internal/gateway"
	"github.com/vanshika/orders/backend/internal/graph"
	"github.com/vanshika/orders/backend/internal/payment"
	"github.com/vanshika/orders/backend/internal/repository"
	"github.com/vanshika/orders/backend/internal/server"
	"github.com/vanshika/orders/backend/internal/service"
)

// App holds the wired collaborators of the service.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Repository repository.Repository
	Processor  *service.TransactionProcessor

	closers []func() error
}

// New builds every collaborator named by cfg. Call Close to release
// connections even when New returns an error.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	repo, err := a.openRepository(ctx)
	if err != nil {
		return a, err
	}
	a.Repository = repo

	checker, err := a.newFraudChecker()
	if err != nil {
		return a, err
	}
	sender, err := a.newAlertSender()
	if err != nil {
		return a, err
	}
	payments, err := a.newPaymentFactory()
	if err != nil {
		return a, err
	}

	proc, err := service.NewTransactionProcessor(service.Dependencies{
		Repository: repo,
		Validator:  newValidator(cfg.Workflow.Validation),
		Fraud:      checker,
		Alerts:     sender,
		Payments:   payments,
		Logger:     logger,
	}, service.Options{PersistFraudulent: cfg.Workflow.PersistFraudulent})
	if err != nil {
		return a, err
	}
	a.Processor = proc

	logger.Info("service assembled",
		"store", cfg.Store.Backend,
		"fraud", cfg.Fraud.Mode,
		"alert", cfg.Alert.Mode,
		"gatewayMethods", cfg.Payment.GatewayMethods,
		"paymentMethods", payments.Tags(),
	)
	return a, nil
}

// Handler returns the HTTP router for the service.
func (a *App) Handler() http.Handler {
	return server.NewRouter(a.Logger, server.RouterDependencies{
		Health: server.StoreHealthService{Store: a.Repository},
		API:    server.NewAPIHandlers(a.Logger, a.Processor, a.Repository),
	})
}

// Batch returns a worker pool over the processor.
func (a *App) Batch(workers int) *service.BatchProcessor {
	return service.NewBatchProcessor(a.Processor, workers)
}

// Close releases connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) openRepository(ctx context.Context) (repository.Repository, error) {
	cfg := a.Config
	switch cfg.Store.Backend {
	case config.StoreGraph:
		client, err := graph.NewNeo4jClient(ctx, graph.Options{
			URI:            cfg.Graph.URI,
			Database:       cfg.Graph.Database,
			Username:       cfg.Graph.Username,
			Password:       cfg.Graph.Password,
			MaxConnections: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, fmt.Errorf("connect graph store: %w", err)
		}
		a.onClose(func() error { return client.Close(context.Background()) })
		return repository.NewGraphRepository(client), nil

	case config.StoreDynamoDB:
		repo, err := repository.OpenDynamo(ctx, repository.DynamoOptions{
			Region:   cfg.Store.DynamoRegion,
			Table:    cfg.Store.DynamoTable,
			Endpoint: cfg.Store.DynamoEndpoint,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Store.DynamoCreateTable {
			if err := repo.EnsureTable(ctx); err != nil {
				return nil, err
			}
		}
		return repo, nil

	case config.StoreSQLite:
		repo, err := repository.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.onClose(repo.Close)
		return repo, nil

	default:
		return repository.NewMemoryRepository(), nil
	}
}

func (a *App) newFraudChecker() (fraud.Checker, error) {
	cfg := a.Config.Fraud
	if cfg.Mode == config.FraudExternal {
		transport, err := gateway.NewHTTPTransport(a.Logger, nil, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("fraud transport: %w", err)
		}
		return fraud.NewExternalChecker(transport), nil
	}
	return fraud.NewRandomChecker(cfg.Rate, cfg.MinDelay, cfg.MaxDelay, cfg.Seed), nil
}

func (a *App) newAlertSender() (alert.Sender, error) {
	cfg := a.Config.Alert
	switch cfg.Mode {
	case config.AlertHTTP:
		transport, err := gateway.NewHTTPTransport(a.Logger, nil, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("alert transport: %w", err)
		}
		return alert.NewGatewaySender(transport, cfg.Types...), nil

	case config.AlertAMQP:
		transport, err := gateway.DialAMQP(gateway.AMQPOptions{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.Exchange,
			RoutingKey: cfg.RoutingKey,
		})
		if err != nil {
			return nil, fmt.Errorf("alert broker: %w", err)
		}
		a.onClose(transport.Close)
		return alert.NewGatewaySender(transport, cfg.Types...), nil

	case config.AlertDiscord:
		sender, err := alert.NewDiscordSender(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			return nil, err
		}
		a.onClose(sender.Close)
		return sender, nil

	default:
		return alert.NewLogSender(a.Logger, cfg.Types...), nil
	}
}

func (a *App) newPaymentFactory() (*payment.Factory, error) {
	cfg := a.Config.Payment
	factory := payment.NewDefaultFactory(payment.Options{MinDelay: cfg.MinDelay, MaxDelay: cfg.MaxDelay})
	if len(cfg.GatewayMethods) == 0 {
		return factory, nil
	}

	transport, err := gateway.NewHTTPTransport(a.Logger, nil, cfg.GatewayURL)
	if err != nil {
		return nil, fmt.Errorf("payment transport: %w", err)
	}
	for _, method := range cfg.GatewayMethods {
		processor := payment.NewGatewayProcessor(method, transport)
		factory.Register(method, func() payment.Processor { return processor })
	}
	return factory, nil
}

func newValidator(mode string) service.Validator {
	if mode == "required" {
		return service.AllOf(service.TransactionValidator{}, service.RequiredFieldsValidator{})
	}
	return service.TransactionValidator{}
}
