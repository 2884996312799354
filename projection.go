package icefile

import "github.com/parquet-go/parquet-go"

// Projection is the schema a read produces: the names, order, and types the
// caller asks for, independent of how (or whether) the file stores them.
// Resolution maps each projected field onto the file through the table
// schema; fields the file predates come back as null columns.
type Projection struct {
	Fields []ProjectedField
}

// ProjectedField is one field of a projection. Exactly one of Type and Fields
// is set: a leaf field carries the parquet type it materializes as, a struct
// field carries its projected children.
type ProjectedField struct {
	Name   string
	Type   parquet.Type
	Fields []ProjectedField
}

// Leaf returns true if f projects a value column rather than a struct.
func (f *ProjectedField) Leaf() bool { return f.Type != nil }

// ProjectionOf derives the projection reading every field of node at its
// declared type. Most programs construct projections this way from a schema
// of the row type they consume:
//
//	proj := icefile.ProjectionOf(parquet.SchemaOf(new(RowType)))
func ProjectionOf(node parquet.Node) Projection {
	return Projection{Fields: projectedFieldsOf(node)}
}

func projectedFieldsOf(node parquet.Node) []ProjectedField {
	fields := node.Fields()
	projected := make([]ProjectedField, len(fields))
	for i, field := range fields {
		projected[i].Name = field.Name()
		if field.Leaf() {
			projected[i].Type = field.Type()
		} else {
			projected[i].Fields = projectedFieldsOf(field)
		}
	}
	return projected
}
