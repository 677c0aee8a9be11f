// Package store defines the primitives of a simple key/value storage that
// supports a single read-write transaction at a time.
package store

// Readable is the interface for a readable store. The boolean is false when
// the key has never been committed.
type Readable interface {
	Get(key string) (int64, bool)
}

// Writable is the interface for a writable store. A write is only accepted
// while a transaction is open.
type Writable interface {
	Put(key string, value int64) error
}

// Transaction is the lifecycle interface that store implementations provide to
// group writes atomically.
type Transaction interface {
	// Begin opens a new transaction.
	Begin() error

	// Commit applies the pending writes and closes the transaction.
	Commit() error

	// Rollback discards the pending writes and closes the transaction.
	Rollback() error

	// OnCommit adds a callback to be executed after a transaction
	// successfully commits.
	OnCommit(func())
}

// Store is a transactional key/value store.
type Store interface {
	Readable
	Writable
	Transaction
}
