package assembler

import (
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/colfab/rasm"
)

// Sequencer executes an automaton directly, resolving one case per column
// value.  It is the semantic reference for CompiledReader and the fallback
// engine when compilation fails.
type Sequencer struct {
	automaton *rasm.Automaton
	bindings  Bindings
	session   ksuid.KSUID
	logger    *zap.Logger
}

// NewSequencer wires the bindings to the automaton.  Missing bindings are
// reported here, wrapped in ErrUnbound.
func NewSequencer(a *rasm.Automaton, b Bindings, opts ...Option) (*Sequencer, error) {
	if err := b.Validate(a); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Sequencer{
		automaton: a,
		bindings:  b,
		session:   ksuid.New(),
		logger:    o.logger,
	}, nil
}

// ReadRecord assembles the next record.  For each column value visited it
// notifies the groups entered, delivers the value to the leaf converter when
// present, consumes the column, notifies the groups left, and jumps to the
// next state; the repetition level steering the jump is the one carried by
// the column's next value.  Errors from column readers are returned to the
// caller uninterpreted, and no partial record is valid once one surfaces.
func (s *Sequencer) ReadRecord() error {
	terminal := s.automaton.Terminal()
	s.bindings.Root.Start()
	currentLevel := 0
	for id := 0; id != terminal; {
		state := s.automaton.State(id)
		column := s.bindings.Columns[id]
		defined := true
		if state.MaxDefinitionLevel != 0 {
			defined = column.DefinitionLevel() == state.MaxDefinitionLevel
		}
		var value any
		if defined {
			value = column.Value()
		}
		if err := column.Consume(); err != nil {
			return err
		}
		repetition := 0
		if state.MaxRepetitionLevel != 0 {
			repetition = column.RepetitionLevel()
		}
		c, err := state.Resolve(currentLevel, repetition, defined)
		if err != nil {
			return err
		}
		s.logger.Debug("transition",
			zap.Stringer("session", s.session),
			zap.Int("state", id),
			zap.Int("case", int(c.ID())),
			zap.Bool("defined", defined),
			zap.Int("level", currentLevel),
			zap.Int("repetition", repetition))
		path := s.bindings.Paths[id]
		if start, ok := c.Ascent(); ok {
			for level := start; level <= c.Depth(); level++ {
				path[level].Start()
			}
		}
		if defined {
			s.bindings.Leaves[id].Add(value)
		}
		if next, ok := c.Descent(); ok {
			for level := c.Depth() + 1; level > next; level-- {
				path[level-1].End()
			}
		}
		currentLevel = c.NewDepth(currentLevel)
		id = c.NextState()
	}
	s.bindings.Root.End()
	return nil
}
