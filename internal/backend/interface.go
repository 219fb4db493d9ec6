package backend

import "rentledger/internal/storage"

// BackendType names a storage.Store implementation.
type BackendType string

const (
	JSONBackend   BackendType = "json"
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
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Persistent reports whether documents outlive the process.
func (bt BackendType) Persistent() bool {
	return bt == JSONBackend || bt == SQLiteBackend
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Config holds configuration for store and publisher creation
type Config struct {
	Type BackendType

	// json
	DataDir string

	// sqlite
	SQLiteDBPath string

	// ledger sync publishing, optional
	SyncEnabled  bool
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Result is an opened store with the publisher the session should use.
// Publisher is nil when sync is disabled or the broker was unreachable.
type Result struct {
	Store     storage.Store
	Publisher Publisher
	Cleanup   CleanupFunc
}
