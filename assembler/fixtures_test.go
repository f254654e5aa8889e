package assembler

import (
	"fmt"

	"github.com/colfab/rasm"
)

// recorder accumulates converter notifications as a flat trace.
type recorder struct {
	trace []string
}

func (r *recorder) add(event string) { r.trace = append(r.trace, event) }

type recordedGroup struct {
	rec  *recorder
	name string
}

func (g *recordedGroup) Start() { g.rec.add(g.name + ".start") }
func (g *recordedGroup) End()   { g.rec.add(g.name + ".end") }

type recordedLeaf struct {
	rec  *recorder
	name string
}

func (l *recordedLeaf) Add(value any) { l.rec.add(fmt.Sprintf("%s.add(%v)", l.name, value)) }

// fixture is one automaton with column data and the notification trace each
// record read must produce.
type fixture struct {
	name    string
	states  []rasm.State
	columns [][]Entry
	// groups[state] names the converter path of that state; states using
	// the same name share one converter.
	groups  [][]string
	records [][]string
}

// bind wires fresh in-memory columns and recording converters.
func (f *fixture) bind(rec *recorder) Bindings {
	shared := make(map[string]*recordedGroup)
	b := Bindings{Root: &recordedGroup{rec, "root"}}
	for id := range f.states {
		b.Columns = append(b.Columns, NewMemColumn(f.columns[id]))
		b.Leaves = append(b.Leaves, &recordedLeaf{rec, fmt.Sprintf("leaf%d", id)})
		var path []GroupConverter
		if id < len(f.groups) {
			for _, name := range f.groups[id] {
				g, ok := shared[name]
				if !ok {
					g = &recordedGroup{rec, name}
					shared[name] = g
				}
				path = append(path, g)
			}
		}
		b.Paths = append(b.Paths, path)
	}
	return b
}

func fixtures() []fixture {
	return []fixture{
		// Two flat optional columns, no nesting.  Record one has a value
		// in the first column only; record two is entirely empty.
		{
			name: "flat optional pair",
			states: []rasm.State{
				{
					MaxDefinitionLevel: 1,
					DefinedCases:       []rasm.Case{rasm.NewCase(0, 1, rasm.Match{Depth: 0, Repetition: 0})},
					UndefinedCases:     []rasm.Case{rasm.NewCase(0, 1, rasm.Match{Depth: 0, Repetition: 0})},
				},
				{
					MaxDefinitionLevel: 1,
					DefinedCases:       []rasm.Case{rasm.NewCase(0, 2, rasm.Match{Depth: 0, Repetition: 0})},
					UndefinedCases:     []rasm.Case{rasm.NewCase(0, 2, rasm.Match{Depth: 0, Repetition: 0})},
				},
			},
			columns: [][]Entry{
				{{Value: "a", DefinitionLevel: 1}, {}},
				{{}, {}},
			},
			records: [][]string{
				{"root.start", "leaf0.add(a)", "root.end"},
				{"root.start", "root.end"},
			},
		},
		// One flat repeated column looping on itself while values repeat.
		{
			name: "repeated leaf",
			states: []rasm.State{
				{
					MaxDefinitionLevel: 1,
					MaxRepetitionLevel: 1,
					DefinedCases: []rasm.Case{
						rasm.NewCase(0, 1, rasm.Match{Depth: 0, Repetition: 0}),
						rasm.NewCase(0, 0, rasm.Match{Depth: 0, Repetition: 1}),
					},
					UndefinedCases: []rasm.Case{rasm.NewCase(0, 1, rasm.Match{Depth: 0, Repetition: 0})},
				},
			},
			columns: [][]Entry{
				{
					{Value: "a", DefinitionLevel: 1},
					{Value: "b", DefinitionLevel: 1, RepetitionLevel: 1},
					{Value: "c", DefinitionLevel: 1, RepetitionLevel: 1},
					{},
					{Value: "d", DefinitionLevel: 1},
				},
			},
			records: [][]string{
				{"root.start", "leaf0.add(a)", "leaf0.add(b)", "leaf0.add(c)", "root.end"},
				{"root.start", "root.end"},
				{"root.start", "leaf0.add(d)", "root.end"},
			},
		},
		// An optional group with a required and an optional leaf.
		{
			name: "optional group",
			states: []rasm.State{
				{
					MaxDefinitionLevel: 1,
					Depth:              1,
					DefinedCases:       []rasm.Case{rasm.NewAscent(0, 0, 1, rasm.Match{Depth: 0, Repetition: 0})},
					UndefinedCases:     []rasm.Case{rasm.NewCase(0, 1, rasm.Match{Depth: 0, Repetition: 0})},
				},
				{
					MaxDefinitionLevel: 2,
					Depth:              1,
					DefinedCases:       []rasm.Case{rasm.NewDescent(0, 0, 2, rasm.Match{Depth: 1, Repetition: 0})},
					UndefinedCases: []rasm.Case{
						rasm.NewDescent(0, 0, 2, rasm.Match{Depth: 1, Repetition: 0}),
						rasm.NewCase(0, 2, rasm.Match{Depth: 0, Repetition: 0}),
					},
				},
			},
			columns: [][]Entry{
				{
					{Value: 5, DefinitionLevel: 1},
					{},
					{Value: 7, DefinitionLevel: 1},
				},
				{
					{Value: "t", DefinitionLevel: 2},
					{},
					{DefinitionLevel: 1},
				},
			},
			groups: [][]string{{"meta"}, {"meta"}},
			records: [][]string{
				{"root.start", "meta.start", "leaf0.add(5)", "leaf1.add(t)", "meta.end", "root.end"},
				{"root.start", "root.end"},
				{"root.start", "meta.start", "leaf0.add(7)", "meta.end", "root.end"},
			},
		},
		// A repeated group of two leaves; the second leaf's cases steer
		// both the loop back for further group elements and the descent
		// out of the group.
		{
			name: "repeated group",
			states: []rasm.State{
				{
					MaxDefinitionLevel: 1,
					MaxRepetitionLevel: 1,
					Depth:              1,
					DefinedCases: []rasm.Case{
						rasm.NewAscent(0, 0, 1, rasm.Match{Depth: 0, Repetition: 0}, rasm.Match{Depth: 0, Repetition: 1}),
					},
					UndefinedCases: []rasm.Case{
						rasm.NewCase(0, 1, rasm.Match{Depth: 0, Repetition: 0}),
					},
				},
				{
					MaxDefinitionLevel: 2,
					MaxRepetitionLevel: 1,
					Depth:              1,
					DefinedCases: []rasm.Case{
						rasm.NewDescent(0, 0, 0, rasm.Match{Depth: 1, Repetition: 1}),
						rasm.NewDescent(0, 0, 2, rasm.Match{Depth: 1, Repetition: 0}),
					},
					UndefinedCases: []rasm.Case{
						rasm.NewDescent(0, 0, 0, rasm.Match{Depth: 1, Repetition: 1}),
						rasm.NewDescent(0, 0, 2, rasm.Match{Depth: 1, Repetition: 0}),
						rasm.NewCase(0, 2, rasm.Match{Depth: 0, Repetition: 0}),
					},
				},
			},
			columns: [][]Entry{
				{
					{Value: 1, DefinitionLevel: 1},
					{Value: 2, DefinitionLevel: 1, RepetitionLevel: 1},
					{},
					{Value: 3, DefinitionLevel: 1},
				},
				{
					{Value: "x", DefinitionLevel: 2},
					{DefinitionLevel: 1, RepetitionLevel: 1},
					{},
					{DefinitionLevel: 1},
				},
			},
			groups: [][]string{{"links"}, {"links"}},
			records: [][]string{
				{
					"root.start",
					"links.start", "leaf0.add(1)", "leaf1.add(x)", "links.end",
					"links.start", "leaf0.add(2)", "links.end",
					"root.end",
				},
				{"root.start", "root.end"},
				{"root.start", "links.start", "leaf0.add(3)", "links.end", "root.end"},
			},
		},
	}
}

// gapStates builds a valid automaton whose case domains leave the pair
// (depth 0, repetition 2) uncovered, so feeding a column value carrying that
// repetition level exposes the hole at run time.
func gapStates() []rasm.State {
	return []rasm.State{
		{
			MaxRepetitionLevel: 2,
			DefinedCases: []rasm.Case{
				rasm.NewCase(0, 1, rasm.Match{Depth: 0, Repetition: 0}),
				rasm.NewCase(0, 0, rasm.Match{Depth: 0, Repetition: 1}),
			},
		},
	}
}

var gapColumn = []Entry{
	{Value: "a"},
	{Value: "b", RepetitionLevel: 2},
}
