// Package parquetdef derives the structural half of record-assembly states
// from a parquet schema definition: for every leaf column, the maximum
// definition and repetition levels its values can carry and the depth of its
// group-converter path.  The transition cases of an automaton are supplied
// by the caller.
package parquetdef

import (
	"strings"

	"github.com/fraugster/parquet-go/parquet"
	"github.com/fraugster/parquet-go/parquetschema"
)

// Column describes one leaf column of a schema.
type Column struct {
	Path               []string
	MaxDefinitionLevel int
	MaxRepetitionLevel int
	// Depth is the number of groups between the record root and the
	// leaf, i.e. the length of the leaf's converter path.
	Depth int
}

// Name returns the dotted path of the column.
func (c *Column) Name() string {
	return strings.Join(c.Path, ".")
}

// Parse returns the leaf columns of the given schema definition text in
// schema order.
func Parse(text string) ([]Column, error) {
	sd, err := parquetschema.ParseSchemaDefinition(text)
	if err != nil {
		return nil, err
	}
	var columns []Column
	walk(sd.RootColumn.Children, nil, 0, 0, 0, &columns)
	return columns, nil
}

// walk descends the column definition tree.  Optional and repeated ancestors
// raise the definition level; repeated ancestors raise the repetition level.
func walk(defs []*parquetschema.ColumnDefinition, path []string, def, rep, depth int, out *[]Column) {
	for _, cd := range defs {
		se := cd.SchemaElement
		colDef, colRep := def, rep
		switch se.GetRepetitionType() {
		case parquet.FieldRepetitionType_OPTIONAL:
			colDef++
		case parquet.FieldRepetitionType_REPEATED:
			colDef++
			colRep++
		}
		colPath := append(path[:len(path):len(path)], se.GetName())
		if se.Type != nil {
			*out = append(*out, Column{
				Path:               colPath,
				MaxDefinitionLevel: colDef,
				MaxRepetitionLevel: colRep,
				Depth:              depth,
			})
			continue
		}
		walk(cd.Children, colPath, colDef, colRep, depth+1, out)
	}
}
