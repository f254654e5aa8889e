// Package rasm models record-assembly automatons for data shredded into
// columns the Dremel way.  Each leaf column of a nested schema is stored
// independently along with per-value repetition and definition levels, and
// an automaton describes how the columns of one logical record interleave:
// one state per leaf column, with transition cases keyed on the nesting
// depth reached so far and the repetition level of the next column value.
//
// An Automaton is a passive model.  The assembler package executes it,
// either directly (Sequencer) or as a specialized program (CompiledReader).
package rasm

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// State describes one leaf column of an automaton.  Its id is its index in
// the state slice passed to NewAutomaton.
type State struct {
	// MaxDefinitionLevel is the definition level at which a value of this
	// column is present.  Zero means the column is always defined.
	MaxDefinitionLevel int
	// MaxRepetitionLevel bounds the repetition levels this column can
	// carry.  Zero means the column never repeats.
	MaxRepetitionLevel int
	// Depth is the nesting depth of the leaf, i.e. the number of group
	// converters on the path from the record root down to the leaf.
	Depth int
	// DefinedCases and UndefinedCases are the transitions taken when the
	// column's current value is present or absent, respectively.
	// UndefinedCases may be empty only when MaxDefinitionLevel is zero.
	DefinedCases   []Case
	UndefinedCases []Case
}

// Automaton is an immutable record-assembly FSA.  NewAutomaton validates the
// model up front so that execution never has to re-check cross-references.
type Automaton struct {
	states   []State
	maxDepth int
}

// NewAutomaton builds an automaton from the given states, which are copied.
// Case ids are assigned densely in case order within each definedness set.
// All validation problems are reported at once.
func NewAutomaton(states []State) (*Automaton, error) {
	if len(states) == 0 {
		return nil, errors.New("automaton has no states")
	}
	a := &Automaton{states: make([]State, len(states))}
	for id, s := range states {
		s.DefinedCases = copyCases(s.DefinedCases)
		s.UndefinedCases = copyCases(s.UndefinedCases)
		a.states[id] = s
		if s.Depth > a.maxDepth {
			a.maxDepth = s.Depth
		}
	}
	var err error
	for id := range a.states {
		err = multierr.Append(err, a.validateState(id))
	}
	err = multierr.Append(err, a.validateReachability())
	if err != nil {
		return nil, err
	}
	return a, nil
}

// StateCount returns the number of states.
func (a *Automaton) StateCount() int { return len(a.states) }

// Terminal returns the sentinel state id that marks the end of a record.
// It is equal to StateCount.
func (a *Automaton) Terminal() int { return len(a.states) }

// State returns the state with the given id.  The returned value is shared
// and must not be modified.
func (a *Automaton) State(id int) *State { return &a.states[id] }

// MaxDepth returns the deepest converter path across all states, which
// bounds the nesting depth reachable while assembling a record.
func (a *Automaton) MaxDepth() int { return a.maxDepth }

func copyCases(cases []Case) []Case {
	out := make([]Case, len(cases))
	for i, c := range cases {
		c.domain = append([]Match(nil), c.domain...)
		c.id = CaseID(i)
		out[i] = c
	}
	return out
}

func (a *Automaton) validateState(id int) error {
	s := &a.states[id]
	var err error
	if s.MaxDefinitionLevel < 0 || s.MaxRepetitionLevel < 0 || s.Depth < 0 {
		err = multierr.Append(err, fmt.Errorf("state %d: negative level bound", id))
	}
	if len(s.DefinedCases) == 0 {
		err = multierr.Append(err, fmt.Errorf("state %d: no defined cases", id))
	}
	if s.MaxDefinitionLevel > 0 && len(s.UndefinedCases) == 0 {
		err = multierr.Append(err, fmt.Errorf("state %d: no undefined cases", id))
	}
	err = multierr.Append(err, a.validateCases(id, s.DefinedCases, "defined"))
	err = multierr.Append(err, a.validateCases(id, s.UndefinedCases, "undefined"))
	return err
}

func (a *Automaton) validateCases(id int, cases []Case, kind string) error {
	s := &a.states[id]
	var err error
	domain := make(map[Match]CaseID)
	for i := range cases {
		c := &cases[i]
		if c.nextState < 0 || c.nextState > len(a.states) {
			err = multierr.Append(err, fmt.Errorf("state %d: %s case %d: next state %d out of range", id, kind, i, c.nextState))
		}
		if c.motion != motionNone && c.depth >= s.Depth {
			err = multierr.Append(err, fmt.Errorf("state %d: %s case %d: depth %d exceeds converter path of length %d", id, kind, i, c.depth, s.Depth))
		}
		if c.motion == motionAscend && (c.startLevel < 0 || c.startLevel > c.depth) {
			err = multierr.Append(err, fmt.Errorf("state %d: %s case %d: start level %d outside [0, %d]", id, kind, i, c.startLevel, c.depth))
		}
		if c.motion == motionDescend && (c.nextLevel < 0 || c.nextLevel > c.depth) {
			err = multierr.Append(err, fmt.Errorf("state %d: %s case %d: next level %d outside [0, %d]", id, kind, i, c.nextLevel, c.depth))
		}
		for _, m := range c.domain {
			if m.Depth < 0 || m.Depth > a.maxDepth || m.Repetition < 0 || m.Repetition > s.MaxRepetitionLevel {
				err = multierr.Append(err, fmt.Errorf("state %d: %s case %d: match (%d, %d) out of range", id, kind, i, m.Depth, m.Repetition))
				continue
			}
			if prev, ok := domain[m]; ok {
				err = multierr.Append(err, fmt.Errorf("state %d: %s case %d overlaps case %d at depth %d, repetition level %d", id, kind, i, prev, m.Depth, m.Repetition))
				continue
			}
			domain[m] = c.id
		}
	}
	return err
}

// validateReachability ensures every state has some chain of transitions
// leading to the terminal sentinel, so no input can trap a record read in a
// subgraph that never finishes.
func (a *Automaton) validateReachability() error {
	reaches := make([]bool, len(a.states))
	for changed := true; changed; {
		changed = false
		for id := range a.states {
			if reaches[id] {
				continue
			}
			s := &a.states[id]
			for _, cases := range [][]Case{s.DefinedCases, s.UndefinedCases} {
				for i := range cases {
					next := cases[i].nextState
					if next == len(a.states) || (next >= 0 && next < len(a.states) && reaches[next]) {
						reaches[id] = true
						changed = true
					}
				}
			}
		}
	}
	var err error
	for id, ok := range reaches {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("state %d cannot reach the end of the record", id))
		}
	}
	return err
}
