package script

import (
	"fmt"
	"io"
	"strconv"

	txkv "github.com/arwendowers/data-processing"
	"github.com/arwendowers/data-processing/core/store/txn"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Runner executes operations against a store and prints the results.
type Runner struct {
	store   *txn.Store
	out     io.Writer
	logger  zerolog.Logger
	verbose bool
}

// RunnerOption is the type of option to create a runner.
type RunnerOption func(*Runner)

// WithLogger is an option to set a specific logger.
func WithLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithVerbose is an option to print the result of every operation, including
// the successful writes.
func WithVerbose() RunnerOption {
	return func(r *Runner) {
		r.verbose = true
	}
}

// NewRunner creates a runner that executes the operations on the store and
// prints to the writer.
func NewRunner(store *txn.Store, out io.Writer, opts ...RunnerOption) Runner {
	r := Runner{
		store:  store,
		out:    out,
		logger: txkv.Logger.With().Str("component", "script").Logger(),
	}

	for _, opt := range opts {
		opt(&r)
	}

	return r
}

// Exec executes a single operation and returns its result: the value or Null
// for a read, the error message for a rejected operation, or OK. The error is
// only returned when the operation itself is invalid.
func (r Runner) Exec(op Op) (string, error) {
	err := op.Validate()
	if err != nil {
		return "", xerrors.Errorf("invalid operation: %v", err)
	}

	switch op.Op {
	case KindGet:
		return formatValue(r.store.Get(op.Key)), nil
	case KindPeek:
		return formatValue(r.store.Peek(op.Key)), nil
	case KindPut:
		return formatErr(r.store.Put(op.Key, *op.Value)), nil
	case KindBegin:
		return formatErr(r.store.Begin()), nil
	case KindCommit:
		return formatErr(r.store.Commit()), nil
	default:
		return formatErr(r.store.Rollback()), nil
	}
}

// Run executes the operations in order and prints the results of the reads and
// of the rejected operations. It stops at the first operation whose result
// does not match its expectation.
func (r Runner) Run(ops []Op) error {
	for i, op := range ops {
		res, err := r.Exec(op)
		if err != nil {
			return xerrors.Errorf("operation #%d: %v", i, err)
		}

		r.logger.Debug().Int("index", i).Stringer("op", op).Str("result", res).
			Msg("operation executed")

		if r.verbose || op.Op == KindGet || op.Op == KindPeek || res != OK {
			fmt.Fprintln(r.out, res)
		}

		if op.Expect != "" && op.Expect != res {
			return xerrors.Errorf("operation #%d '%v': expected '%s' but got '%s'",
				i, op, op.Expect, res)
		}
	}

	return nil
}

func formatValue(value int64, found bool) string {
	if !found {
		return Null
	}

	return strconv.FormatInt(value, 10)
}

func formatErr(err error) string {
	if err != nil {
		return err.Error()
	}

	return OK
}
