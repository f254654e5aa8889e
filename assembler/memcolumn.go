package assembler

import "fmt"

// Entry is one value of a MemColumn along with its levels.
type Entry struct {
	Value           any
	DefinitionLevel int
	RepetitionLevel int
}

// MemColumn is a ColumnReader over an in-memory sequence of values.  Once
// the sequence is exhausted, the level accessors report zero, which is what
// a record boundary looks like, and a further Consume fails.
type MemColumn struct {
	entries []Entry
	pos     int
}

func NewMemColumn(entries []Entry) *MemColumn {
	return &MemColumn{entries: entries}
}

func (c *MemColumn) DefinitionLevel() int {
	if c.pos >= len(c.entries) {
		return 0
	}
	return c.entries[c.pos].DefinitionLevel
}

func (c *MemColumn) RepetitionLevel() int {
	if c.pos >= len(c.entries) {
		return 0
	}
	return c.entries[c.pos].RepetitionLevel
}

func (c *MemColumn) Value() any {
	if c.pos >= len(c.entries) {
		return nil
	}
	return c.entries[c.pos].Value
}

func (c *MemColumn) Consume() error {
	if c.pos >= len(c.entries) {
		return fmt.Errorf("column exhausted after %d values", len(c.entries))
	}
	c.pos++
	return nil
}

// Done reports whether every value has been consumed.
func (c *MemColumn) Done() bool { return c.pos >= len(c.entries) }
