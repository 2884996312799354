package icefile

import "github.com/parquet-go/parquet-go"

// Plan is a column materialization plan: the output of resolving a projection
// against a table schema and a file schema. It records, for every projected
// field, how a reader obtains the column values from the file.
//
// Plans hold no reference to the file they were resolved against besides
// column positions, are immutable once constructed, and may drive any number
// of readers concurrently.
type Plan struct {
	Fields []PlanField
}

// PlanField pairs a projected field name with the node describing how the
// field materializes. Fields appear in projection order.
type PlanField struct {
	Name string
	Node PlanNode
}

// PlanNode is one of ReadLeaf, ReadStruct, or FillNull.
type PlanNode interface {
	isPlanNode()
}

// ReadLeaf materializes a value column from a column chunk of the file.
type ReadLeaf struct {
	// Path of the physical column the values are read from, dot components
	// from the root, using the names recorded in the file.
	Path []string
	// Column is the index of the column chunk within each row group, in the
	// leaf order of the file schema.
	Column int
	// Source is the parquet type the file stores.
	Source parquet.Type
	// Target is the parquet type the projection asked for. When Source and
	// Target differ, readers widen each value; resolution only ever plans
	// conversions which preserve every value exactly.
	Target parquet.Type
}

// ReadStruct materializes a struct column from the columns of its fields.
type ReadStruct struct {
	Fields []PlanField

	// Number of optional nodes on the path from the root to this struct,
	// including the struct itself. A row carries a non-null struct when the
	// definition level observed on the witness column reaches this threshold.
	def int
	// Column witnessing the presence of the struct when none of the planned
	// fields read from the file; nil when a planned leaf can witness instead,
	// or when the struct is required at every level and can never be null.
	presence *ReadLeaf
}

// FillNull materializes a column with no physical backing as nulls. Leaf
// fills carry the projected type; struct fills carry a field per projected
// child, each itself a FillNull, so that a missing struct surfaces as a
// struct of null fields rather than a single opaque null.
type FillNull struct {
	Type   parquet.Type
	Fields []PlanField
}

// Struct returns true when the fill has a struct shape.
func (f *FillNull) Struct() bool { return f.Type == nil }

func (*ReadLeaf) isPlanNode()   {}
func (*ReadStruct) isPlanNode() {}
func (*FillNull) isPlanNode()   {}

// String returns a textual representation of the plan.
func (p *Plan) String() string { return sprint(func(pw *printWriter) { printPlan(pw, p) }) }
