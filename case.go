package rasm

// CaseID is a dense dispatch key, unique within one definedness set of one
// state.  NewAutomaton assigns ids in case order.
type CaseID int

// Match is one (nesting depth, repetition level) input pair in the domain of
// a Case.
type Match struct {
	Depth      int
	Repetition int
}

type motion int

const (
	motionNone motion = iota
	motionAscend
	motionDescend
)

// Case is one transition of a record-assembly automaton.  A case may ascend
// into new groups, descend out of groups, or do neither; ascending and
// descending are mutually exclusive, which the constructors enforce.
type Case struct {
	id         CaseID
	motion     motion
	startLevel int
	nextLevel  int
	depth      int
	nextState  int
	domain     []Match
}

// NewCase returns a case that changes no nesting levels and transfers to
// nextState.  The domain lists the inputs the case covers; it is ignored
// when the case is the only one in its set.
func NewCase(depth, nextState int, domain ...Match) Case {
	return Case{
		motion:    motionNone,
		depth:     depth,
		nextState: nextState,
		domain:    domain,
	}
}

// NewAscent returns a case that enters the groups at levels startLevel
// through depth before the leaf value is handled.
func NewAscent(startLevel, depth, nextState int, domain ...Match) Case {
	return Case{
		motion:     motionAscend,
		startLevel: startLevel,
		depth:      depth,
		nextState:  nextState,
		domain:     domain,
	}
}

// NewDescent returns a case that leaves the groups at levels depth down
// through nextLevel after the leaf value is handled.
func NewDescent(depth, nextLevel, nextState int, domain ...Match) Case {
	return Case{
		motion:    motionDescend,
		nextLevel: nextLevel,
		depth:     depth,
		nextState: nextState,
		domain:    domain,
	}
}

// ID returns the case's dispatch key.
func (c *Case) ID() CaseID { return c.id }

// Depth returns the nesting depth reached at the deepest point of the
// transition.  For ascending cases it indexes the last group entered on the
// converter path; for descending cases, the first group left.
func (c *Case) Depth() int { return c.depth }

// NextState returns the id of the state to visit next, which is the
// automaton's terminal sentinel when the record is complete.
func (c *Case) NextState() int { return c.nextState }

// Ascent returns the level of the first group entered, if the case ascends.
func (c *Case) Ascent() (int, bool) {
	return c.startLevel, c.motion == motionAscend
}

// Descent returns the level descended to, if the case descends.
func (c *Case) Descent() (int, bool) {
	return c.nextLevel, c.motion == motionDescend
}

// NewDepth returns the nesting depth after the transition, given the depth
// before it.
func (c *Case) NewDepth(current int) int {
	switch c.motion {
	case motionAscend:
		return c.depth + 1
	case motionDescend:
		return c.nextLevel
	default:
		return current
	}
}

// Domain returns the input pairs the case covers.  The returned slice is
// shared and must not be modified.
func (c *Case) Domain() []Match { return c.domain }

func (c *Case) contains(depth, repetition int) bool {
	for _, m := range c.domain {
		if m.Depth == depth && m.Repetition == repetition {
			return true
		}
	}
	return false
}
