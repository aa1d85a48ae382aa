package backend

import (
	"context"

	"expensetracker/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadyFunc reports whether the backend can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult contains the wired expense service and its lifecycle hooks
type BackendResult struct {
	Service *services.ExpenseService
	Ready   ReadyFunc
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Change events; publishing is off when AMQPURL is empty or
	// DisableEvents is set (the export worker only reads).
	AMQPURL       string
	AMQPExchange  string
	AMQPQueue     string
	DisableEvents bool
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
