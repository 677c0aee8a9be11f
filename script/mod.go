// Package script defines sequences of store operations that can be written in
// YAML or typed line by line, and a runner that executes them against a
// transactional store.
//
// A read prints the value of the key, or "null" when the key is absent. A
// rejected operation prints the error message and the run continues, unless
// the operation carries an expectation that does not match.
package script

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Kind is the type of operation.
type Kind string

const (
	// KindGet reads the committed value of a key.
	KindGet Kind = "get"

	// KindPeek reads the value of a key as seen from the open transaction.
	KindPeek Kind = "peek"

	// KindPut writes a value in the open transaction.
	KindPut Kind = "put"

	// KindBegin opens a transaction.
	KindBegin Kind = "begin"

	// KindCommit commits the open transaction.
	KindCommit Kind = "commit"

	// KindRollback rolls back the open transaction.
	KindRollback Kind = "rollback"
)

// Null is the output of a read when the key is absent.
const Null = "null"

// OK is the result of a write or lifecycle operation that succeeded.
const OK = "ok"

//go:embed demo.yaml
var demo []byte

// Op is a single operation of a script.
type Op struct {
	Op     Kind   `yaml:"op"`
	Key    string `yaml:"key,omitempty"`
	Value  *int64 `yaml:"value,omitempty"`
	Expect string `yaml:"expect,omitempty"`
}

// String returns the operation in the line syntax.
func (op Op) String() string {
	switch op.Op {
	case KindGet, KindPeek:
		return fmt.Sprintf("%s %s", op.Op, op.Key)
	case KindPut:
		if op.Value == nil {
			return fmt.Sprintf("%s %s", op.Op, op.Key)
		}

		return fmt.Sprintf("%s %s %d", op.Op, op.Key, *op.Value)
	default:
		return string(op.Op)
	}
}

// Validate returns an error if the operation is missing an argument or is of
// an unknown kind.
func (op Op) Validate() error {
	switch op.Op {
	case KindGet, KindPeek:
		if op.Key == "" {
			return xerrors.Errorf("%s: missing key", op.Op)
		}
	case KindPut:
		if op.Key == "" {
			return xerrors.Errorf("%s: missing key", op.Op)
		}
		if op.Value == nil {
			return xerrors.Errorf("%s: missing value", op.Op)
		}
	case KindBegin, KindCommit, KindRollback:
	default:
		return xerrors.Errorf("unknown operation '%s'", op.Op)
	}

	return nil
}

// Parse reads a YAML list of operations. When the input holds several
// documents, their lists are executed one after the other.
func Parse(r io.Reader) ([]Op, error) {
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)

	var ops []Op

	for doc := 0; ; doc++ {
		var part []Op

		err := dec.Decode(&part)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xerrors.Errorf("failed to decode document #%d: %v", doc, err)
		}

		ops = append(ops, part...)
	}

	for i, op := range ops {
		err := op.Validate()
		if err != nil {
			return nil, xerrors.Errorf("invalid operation #%d: %v", i, err)
		}
	}

	return ops, nil
}

// Demo returns the reference trace that exercises every operation and error
// case of the store.
func Demo() []Op {
	ops, err := Parse(bytes.NewReader(demo))
	if err != nil {
		panic("embedded demo is invalid: " + err.Error())
	}

	return ops
}

// ParseLine parses a single operation written as "<op> [key] [value]", for
// example "put A 5".
func ParseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Op{}, xerrors.New("empty line")
	}

	op := Op{Op: Kind(strings.ToLower(fields[0]))}
	args := fields[1:]

	expected := 0

	switch op.Op {
	case KindGet, KindPeek:
		expected = 1
	case KindPut:
		expected = 2
	case KindBegin, KindCommit, KindRollback:
	default:
		return Op{}, xerrors.Errorf("unknown operation '%s'", fields[0])
	}

	if len(args) != expected {
		return Op{}, xerrors.Errorf("%s: expected %d argument(s), got %d",
			op.Op, expected, len(args))
	}

	if expected >= 1 {
		op.Key = args[0]
	}

	if expected == 2 {
		value, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return Op{}, xerrors.Errorf("%s: invalid value '%s': %v", op.Op, args[1], err)
		}

		op.Value = &value
	}

	return op, nil
}
