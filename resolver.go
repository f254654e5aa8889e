package rasm

import (
	"errors"
	"fmt"
)

// ErrInconsistent indicates that case resolution found no transition for a
// runtime input, meaning the automaton does not cover its own input domain.
// A record read must abort when it surfaces; continuing would emit wrongly
// nested notifications and silently corrupt the assembled record.
var ErrInconsistent = errors.New("inconsistent record-assembly automaton")

// Resolve picks the transition for the given input.  currentDepth is the
// nesting depth reached so far, repetitionLevel the level carried by the
// column's next value, and defined whether the value just read was present.
// When the relevant set holds a single case, it is returned without
// consulting its domain.
func (s *State) Resolve(currentDepth, repetitionLevel int, defined bool) (*Case, error) {
	if s.MaxRepetitionLevel == 0 {
		repetitionLevel = 0
	}
	cases := s.DefinedCases
	if !defined {
		cases = s.UndefinedCases
	}
	if len(cases) == 1 {
		return &cases[0], nil
	}
	for i := range cases {
		if cases[i].contains(currentDepth, repetitionLevel) {
			return &cases[i], nil
		}
	}
	return nil, fmt.Errorf("no case for depth %d and repetition level %d (defined=%t): %w", currentDepth, repetitionLevel, defined, ErrInconsistent)
}
