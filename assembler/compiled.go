package assembler

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/colfab/rasm"
)

// CompiledReader is the specialized form of one automaton wired to one read
// session.  All case effects were resolved at compile time, so a record read
// is a flat jump chain over precomputed programs with no model lookups.
// Like the column readers it drives, it is not safe for concurrent use.
type CompiledReader struct {
	states   []compiledState
	columns  []ColumnReader
	leaves   []PrimitiveConverter
	root     GroupConverter
	terminal int
	session  ksuid.KSUID
	logger   *zap.Logger
	debug    bool
}

type compiledState struct {
	maxDefinitionLevel int
	maxRepetitionLevel int
	defined            dispatch
	undefined          dispatch
}

type dispatch struct {
	single *program
	table  [][]*program
}

// program is the compiled form of one case: the converter notifications it
// performs, in order, with the leaf delivery between starts and ends.
type program struct {
	starts   []GroupConverter // groups entered, outermost first
	deliver  bool
	ends     []GroupConverter // groups left, innermost first
	setLevel bool
	level    int
	next     int
}

func (d *dispatch) lookup(level, repetition int) *program {
	if d.single != nil {
		return d.single
	}
	if level >= len(d.table) {
		return nil
	}
	row := d.table[level]
	if repetition >= len(row) {
		return nil
	}
	return row[repetition]
}

// Session identifies this reader in trace output.
func (r *CompiledReader) Session() ksuid.KSUID { return r.session }

// ReadRecord assembles the next record.  It produces exactly the
// notification traffic a Sequencer would for the same automaton, bindings,
// and column values.
func (r *CompiledReader) ReadRecord() error {
	r.root.Start()
	currentLevel := 0
	for id := 0; id != r.terminal; {
		state := &r.states[id]
		column := r.columns[id]
		defined := true
		if state.maxDefinitionLevel != 0 {
			defined = column.DefinitionLevel() == state.maxDefinitionLevel
		}
		var value any
		if defined {
			value = column.Value()
		}
		if err := column.Consume(); err != nil {
			return err
		}
		repetition := 0
		if state.maxRepetitionLevel != 0 {
			repetition = column.RepetitionLevel()
		}
		d := &state.defined
		if !defined {
			d = &state.undefined
		}
		prog := d.lookup(currentLevel, repetition)
		if prog == nil {
			// Unreachable against a well-formed automaton, but a
			// hole here must abort the read rather than emit
			// misnested notifications.
			return fmt.Errorf("state %d: no case for depth %d and repetition level %d (defined=%t): %w", id, currentLevel, repetition, defined, rasm.ErrInconsistent)
		}
		if r.debug {
			if ce := r.logger.Check(zap.DebugLevel, "transition"); ce != nil {
				ce.Write(
					zap.Stringer("session", r.session),
					zap.Int("state", id),
					zap.Bool("defined", defined),
					zap.Int("level", currentLevel),
					zap.Int("repetition", repetition))
			}
		}
		for _, g := range prog.starts {
			g.Start()
		}
		if prog.deliver {
			r.leaves[id].Add(value)
		}
		for _, g := range prog.ends {
			g.End()
		}
		if prog.setLevel {
			currentLevel = prog.level
		}
		id = prog.next
	}
	r.root.End()
	return nil
}
