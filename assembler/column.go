// Package assembler executes record-assembly automatons against concrete
// column readers and converter trees.  It provides two engines with the same
// contract: Sequencer interprets the automaton case by case and serves as
// the semantic reference, while Compile specializes an automaton into a
// CompiledReader whose case dispatch and converter notifications are
// resolved ahead of time.  Compiled plans are binding-independent and can be
// shared process-wide through a Cache.
package assembler

// ColumnReader is the per-column capability an assembly engine drives.  It
// is supplied by the columnar storage layer and carries position state that
// advances monotonically, so a reader set must not be shared across
// concurrent record reads.
type ColumnReader interface {
	// DefinitionLevel returns the definition level of the value the
	// reader is positioned on.
	DefinitionLevel() int
	// RepetitionLevel returns the repetition level of the value the
	// reader is positioned on.
	RepetitionLevel() int
	// Value returns the value the reader is positioned on.  It must be
	// called before Consume.
	Value() any
	// Consume advances past the current value and decodes the next one.
	Consume() error
}

// GroupConverter receives enter/leave notifications for one nested group.
// The root of a converter tree also implements GroupConverter; its Start and
// End bracket one whole record.
type GroupConverter interface {
	Start()
	End()
}

// PrimitiveConverter receives the values of one leaf column.
type PrimitiveConverter interface {
	Add(value any)
}

// RecordReader assembles one record per call, driving the bound converter
// tree with start/end/value notifications and advancing every column reader
// visited exactly once.  Both Sequencer and CompiledReader implement it.
type RecordReader interface {
	ReadRecord() error
}
