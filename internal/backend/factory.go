package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	version, dirty, err := storage.SchemaVersion(config.SQLiteDBPath)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		kv.Close()
		return nil, fmt.Errorf("schema version %d is dirty, fix the database and re-run migrations", version)
	}

	publisher := f.newPublisher(ctx, config)
	service := services.NewExpenseService(storage.NewExpenseStore(kv), publisher)

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", version,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: service,
		Ready:   kv.Ping,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	kv := storage.NewMemoryKV()

	publisher := f.newPublisher(ctx, config)
	service := services.NewExpenseService(storage.NewExpenseStore(kv), publisher)

	f.logger.InfoContext(ctx, "Initialized memory backend", "amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: service,
		Ready:   func(context.Context) error { return nil },
		Cleanup: service.Close,
	}, nil
}

// newPublisher connects the optional AMQP publisher. A broker that is down
// at startup is not fatal. The result is a nil interface, never a nil
// *amqp.Client, so the service sees "no publisher".
func (f *DefaultFactory) newPublisher(ctx context.Context, config Config) services.EventPublisher {
	if config.AMQPURL == "" || config.DisableEvents {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
