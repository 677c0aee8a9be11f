// Package txn implements an in-memory key/value store that accepts at most one
// open transaction at a time.
//
// Writes are staged in the write-set of the open transaction and only reach
// the committed state when the transaction commits. A rollback drops the
// write-set. Readers using Get never observe staged writes, while Peek gives
// the owner of the transaction a view of its own writes.
//
// Every operation holds the store lock while it reads or changes the state.
// Observers are notified of the end of a transaction after the lock is
// released.
package txn

import (
	"sync"

	txkv "github.com/arwendowers/data-processing"
	"github.com/arwendowers/data-processing/core"
	"github.com/arwendowers/data-processing/core/store"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

var (
	// ErrNoActiveTransaction is returned by Put, Commit and Rollback when no
	// transaction is open.
	ErrNoActiveTransaction = xerrors.New("no active transaction")

	// ErrTransactionAlreadyActive is returned by Begin when a transaction is
	// already open.
	ErrTransactionAlreadyActive = xerrors.New("transaction already active")
)

// state is the transaction state of the store. It is either idle or open.
type state interface {
	isState()
}

// idle is the state when no transaction is open.
type idle struct{}

func (idle) isState() {}

// open is the state of an open transaction with its write-set.
type open struct {
	id     xid.ID
	writes map[string]int64
}

func (open) isState() {}

// Outcome is the way a transaction ended.
type Outcome string

const (
	// Committed is the outcome of a transaction applied to the committed
	// state.
	Committed Outcome = "committed"

	// RolledBack is the outcome of a transaction whose writes were discarded.
	RolledBack Outcome = "rolled back"
)

// Event is notified to the observers of the store when a transaction ends.
type Event struct {
	ID      xid.ID
	Outcome Outcome

	writes map[string]int64
}

// Writes returns a copy of the write-set of the transaction.
func (e Event) Writes() map[string]int64 {
	writes := make(map[string]int64, len(e.writes))
	for key, value := range e.writes {
		writes[key] = value
	}

	return writes
}

// commitHook adapts a commit callback to an observer.
type commitHook struct {
	fn func()
}

// NotifyCallback implements core.Observer.
func (h *commitHook) NotifyCallback(event interface{}) {
	evt, ok := event.(Event)
	if ok && evt.Outcome == Committed {
		h.fn()
	}
}

// Store is the transactional key/value store.
//
// - implements store.Store
type Store struct {
	mu sync.Mutex

	committed map[string]int64
	state     state
	watcher   *core.Watcher
	logger    zerolog.Logger
}

// Option is the type of option to create a store.
type Option func(*Store)

// WithLogger is an option to set a specific logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a new empty store with no open transaction.
func NewStore(opts ...Option) *Store {
	s := &Store{
		committed: make(map[string]int64),
		state:     idle{},
		watcher:   core.NewWatcher(),
		logger:    txkv.Logger.With().Str("component", "txn").Logger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ store.Store = (*Store)(nil)

// Get implements store.Readable. It returns the committed value of the key, and
// false if the key has never been committed. Writes of the open transaction
// are not visible.
func (s *Store) Get(key string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := s.committed[key]

	return value, found
}

// Peek returns the value of the key as seen from inside the open transaction:
// a key written in the write-set shadows the committed value. Without an open
// transaction, it behaves like Get.
func (s *Store) Peek(key string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx, ok := s.state.(open); ok {
		value, found := tx.writes[key]
		if found {
			return value, true
		}
	}

	value, found := s.committed[key]

	return value, found
}

// Put implements store.Writable. It stages the value in the write-set of the
// open transaction, overwriting any previous write of the same key.
func (s *Store) Put(key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.state.(open)
	if !ok {
		promRejected.WithLabelValues("put").Inc()
		return ErrNoActiveTransaction
	}

	tx.writes[key] = value

	s.logger.Trace().Stringer("txn", tx.id).Str("key", key).Int64("value", value).
		Msg("staged write")

	return nil
}

// Begin implements store.Transaction. It opens a new transaction with an empty
// write-set.
func (s *Store) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.(open); ok {
		promRejected.WithLabelValues("begin").Inc()
		return ErrTransactionAlreadyActive
	}

	tx := open{
		id:     xid.New(),
		writes: make(map[string]int64),
	}

	s.state = tx

	promBegun.Inc()
	s.logger.Debug().Stringer("txn", tx.id).Msg("transaction started")

	return nil
}

// Commit implements store.Transaction. It applies every staged write to the
// committed state and closes the transaction. The observers are notified
// afterwards.
func (s *Store) Commit() error {
	s.mu.Lock()

	tx, ok := s.state.(open)
	if !ok {
		s.mu.Unlock()
		promRejected.WithLabelValues("commit").Inc()
		return ErrNoActiveTransaction
	}

	for key, value := range tx.writes {
		s.committed[key] = value
	}

	s.state = idle{}

	promCommitted.Inc()
	promKeys.Set(float64(len(s.committed)))

	s.logger.Debug().Stringer("txn", tx.id).Int("writes", len(tx.writes)).
		Msg("transaction committed")

	s.mu.Unlock()

	s.watcher.Notify(Event{ID: tx.id, Outcome: Committed, writes: tx.writes})

	return nil
}

// Rollback implements store.Transaction. It drops the write-set of the open
// transaction and leaves the committed state untouched.
func (s *Store) Rollback() error {
	s.mu.Lock()

	tx, ok := s.state.(open)
	if !ok {
		s.mu.Unlock()
		promRejected.WithLabelValues("rollback").Inc()
		return ErrNoActiveTransaction
	}

	s.state = idle{}

	promRolledBack.Inc()
	s.logger.Debug().Stringer("txn", tx.id).Int("writes", len(tx.writes)).
		Msg("transaction rolled back")

	s.mu.Unlock()

	s.watcher.Notify(Event{ID: tx.id, Outcome: RolledBack, writes: tx.writes})

	return nil
}

// OnCommit implements store.Transaction. The callback is executed after each
// successful commit, once the store lock has been released.
func (s *Store) OnCommit(fn func()) {
	s.watcher.Add(&commitHook{fn: fn})
}

// Watch adds an observer that is notified with an Event every time a
// transaction commits or rolls back. The notification happens once the store
// lock has been released, so when several goroutines use the store, the events
// can arrive in a different order than the transactions ended. An observer
// whose dynamic type is not comparable cannot be removed.
func (s *Store) Watch(observer core.Observer) {
	s.watcher.Add(observer)
}

// Unwatch removes the observer.
func (s *Store) Unwatch(observer core.Observer) {
	s.watcher.Remove(observer)
}

// InTransaction returns true when a transaction is open.
func (s *Store) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.state.(open)

	return ok
}

// Len returns the number of committed keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.committed)
}
