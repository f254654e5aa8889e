package assembler

import (
	"errors"
	"fmt"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/colfab/rasm"
)

// ErrCompile indicates that specialization could not produce a runnable
// program.  Callers recover by falling back to NewSequencer, which has the
// same external contract.
var ErrCompile = errors.New("record-assembly compilation failed")

// maxDispatchEntries bounds the dense dispatch table one state may allocate.
const maxDispatchEntries = 1 << 10

// Compile specializes the automaton into a CompiledReader wired to the
// given bindings.  The result is observationally equivalent to a Sequencer
// over the same automaton and bindings: identical notification traffic,
// identical failures.
func Compile(a *rasm.Automaton, b Bindings, opts ...Option) (*CompiledReader, error) {
	p, err := newPlan(a)
	if err != nil {
		return nil, err
	}
	return p.bind(a, b, newOptions(opts))
}

// plan is the binding-independent half of a compiled reader: per state, the
// case effects reduced to level indices plus the dense dispatch tables.
// Plans depend only on automaton structure, so a Cache shares them across
// read sessions; they are immutable once built.
type plan struct {
	states   []planState
	terminal int
}

type planState struct {
	maxDefinitionLevel int
	maxRepetitionLevel int
	defined            planDispatch
	undefined          planDispatch
}

// planDispatch holds either a single case, executed without any dispatch
// structure, or a dense lookup table indexed by the current nesting depth
// and the next repetition level.
type planDispatch struct {
	single *planCase
	table  [][]*planCase
}

type planCase struct {
	ascend     bool
	startLevel int
	descend    bool
	nextLevel  int
	depth      int
	deliver    bool
	setLevel   bool
	level      int
	next       int
}

func newPlan(a *rasm.Automaton) (*plan, error) {
	p := &plan{
		states:   make([]planState, a.StateCount()),
		terminal: a.Terminal(),
	}
	for id := range p.states {
		state := a.State(id)
		ps := &p.states[id]
		ps.maxDefinitionLevel = state.MaxDefinitionLevel
		ps.maxRepetitionLevel = state.MaxRepetitionLevel
		var err error
		if ps.defined, err = newPlanDispatch(a, state, state.DefinedCases, true); err != nil {
			return nil, fmt.Errorf("state %d: %w", id, err)
		}
		if state.MaxDefinitionLevel == 0 {
			// The column is always defined; the undefined branch is
			// never taken.
			continue
		}
		if ps.undefined, err = newPlanDispatch(a, state, state.UndefinedCases, false); err != nil {
			return nil, fmt.Errorf("state %d: %w", id, err)
		}
	}
	return p, nil
}

func newPlanDispatch(a *rasm.Automaton, state *rasm.State, cases []rasm.Case, defined bool) (planDispatch, error) {
	if len(cases) == 1 {
		pc := newPlanCase(&cases[0], defined)
		return planDispatch{single: &pc}, nil
	}
	rows, cols := a.MaxDepth()+1, state.MaxRepetitionLevel+1
	if rows*cols > maxDispatchEntries {
		return planDispatch{}, fmt.Errorf("dispatch table of %d entries exceeds %d: %w", rows*cols, maxDispatchEntries, ErrCompile)
	}
	table := make([][]*planCase, rows)
	for i := range table {
		table[i] = make([]*planCase, cols)
	}
	for i := range cases {
		pc := newPlanCase(&cases[i], defined)
		for _, m := range cases[i].Domain() {
			if m.Depth >= rows || m.Repetition >= cols {
				return planDispatch{}, fmt.Errorf("case %d: match (%d, %d) outside dispatch table: %w", i, m.Depth, m.Repetition, ErrCompile)
			}
			table[m.Depth][m.Repetition] = &pc
		}
	}
	return planDispatch{table: table}, nil
}

func newPlanCase(c *rasm.Case, defined bool) planCase {
	pc := planCase{
		depth:   c.Depth(),
		deliver: defined,
		next:    c.NextState(),
	}
	if start, ok := c.Ascent(); ok {
		pc.ascend, pc.startLevel = true, start
		pc.setLevel, pc.level = true, c.Depth()+1
	}
	if next, ok := c.Descent(); ok {
		pc.descend, pc.nextLevel = true, next
		pc.setLevel, pc.level = true, next
	}
	return pc
}

// bind wires a plan to one session's bindings, resolving every case's group
// notifications to concrete converter slices.
func (p *plan) bind(a *rasm.Automaton, b Bindings, o options) (*CompiledReader, error) {
	if err := b.Validate(a); err != nil {
		return nil, err
	}
	r := &CompiledReader{
		states:   make([]compiledState, len(p.states)),
		columns:  b.Columns,
		leaves:   b.Leaves,
		root:     b.Root,
		terminal: p.terminal,
		session:  ksuid.New(),
		logger:   o.logger,
		debug:    o.logger.Core().Enabled(zap.DebugLevel),
	}
	for id := range p.states {
		ps := &p.states[id]
		r.states[id] = compiledState{
			maxDefinitionLevel: ps.maxDefinitionLevel,
			maxRepetitionLevel: ps.maxRepetitionLevel,
			defined:            ps.defined.bind(b.Paths[id]),
			undefined:          ps.undefined.bind(b.Paths[id]),
		}
	}
	return r, nil
}

func (d *planDispatch) bind(path []GroupConverter) dispatch {
	if d.single != nil {
		return dispatch{single: d.single.bind(path)}
	}
	out := dispatch{table: make([][]*program, len(d.table))}
	// A case spanning several table entries binds to one shared program.
	bound := make(map[*planCase]*program)
	for i, row := range d.table {
		out.table[i] = make([]*program, len(row))
		for j, pc := range row {
			if pc == nil {
				continue
			}
			prog, ok := bound[pc]
			if !ok {
				prog = pc.bind(path)
				bound[pc] = prog
			}
			out.table[i][j] = prog
		}
	}
	return out
}

func (c *planCase) bind(path []GroupConverter) *program {
	prog := &program{
		deliver:  c.deliver,
		setLevel: c.setLevel,
		level:    c.level,
		next:     c.next,
	}
	if c.ascend {
		prog.starts = path[c.startLevel : c.depth+1]
	}
	if c.descend {
		for level := c.depth; level >= c.nextLevel; level-- {
			prog.ends = append(prog.ends, path[level])
		}
	}
	return prog
}
