package assembler

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/colfab/rasm"
)

// ErrUnbound indicates that runtime wiring is missing a column reader or
// converter target.  It surfaces at construction time, never at first read.
var ErrUnbound = errors.New("unbound record-assembly dependency")

// Bindings wires the concrete collaborators of one read session to the
// states of an automaton: one column reader, one primitive converter, and
// one group-converter path per state, plus the root converter whose Start
// and End bracket each record.
type Bindings struct {
	Columns []ColumnReader
	Leaves  []PrimitiveConverter
	Paths   [][]GroupConverter
	Root    GroupConverter
}

// Validate checks that every dependency the automaton needs is bound,
// reporting all missing bindings at once.
func (b *Bindings) Validate(a *rasm.Automaton) error {
	var err error
	n := a.StateCount()
	if b.Root == nil {
		err = multierr.Append(err, fmt.Errorf("root converter: %w", ErrUnbound))
	}
	if len(b.Columns) != n {
		err = multierr.Append(err, fmt.Errorf("%d column readers for %d states: %w", len(b.Columns), n, ErrUnbound))
	}
	if len(b.Leaves) != n {
		err = multierr.Append(err, fmt.Errorf("%d primitive converters for %d states: %w", len(b.Leaves), n, ErrUnbound))
	}
	if len(b.Paths) != n {
		err = multierr.Append(err, fmt.Errorf("%d converter paths for %d states: %w", len(b.Paths), n, ErrUnbound))
	}
	for id := 0; id < n; id++ {
		if id < len(b.Columns) && b.Columns[id] == nil {
			err = multierr.Append(err, fmt.Errorf("state %d: column reader: %w", id, ErrUnbound))
		}
		if id < len(b.Leaves) && b.Leaves[id] == nil {
			err = multierr.Append(err, fmt.Errorf("state %d: primitive converter: %w", id, ErrUnbound))
		}
		if id >= len(b.Paths) {
			continue
		}
		path := b.Paths[id]
		if depth := a.State(id).Depth; len(path) < depth {
			err = multierr.Append(err, fmt.Errorf("state %d: converter path has %d of %d groups: %w", id, len(path), depth, ErrUnbound))
		}
		for level, g := range path {
			if g == nil {
				err = multierr.Append(err, fmt.Errorf("state %d: group converter at level %d: %w", id, level, ErrUnbound))
			}
		}
	}
	return err
}
