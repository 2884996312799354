package icefile

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// Resolve computes the plan materializing proj from a file with the given
// physical schema, using table to translate projected names into the field
// ids recorded in the file.
//
// Each projected field resolves independently: the name selects a field of
// the table schema, the field id selects the physical column. Fields the
// table schema does not know, and fields the file was written before the
// table acquired, plan as null fills. Struct fields resolve recursively, so a
// struct which gained or lost fields over the life of the table still
// materializes, with the missing fields null.
//
// Resolve returns a *ResolutionError when a physically present column cannot
// produce the projected type, and an error wrapping ErrMalformedSchema when
// two fields of one physical group carry the same field id. It panics when
// table is nil: callers reading files without a table schema derive one with
// IdentityTableSchema first.
func Resolve(proj Projection, table *TableSchema, physical parquet.Node) (*Plan, error) {
	if table == nil {
		panic("icefile: Resolve called with nil table schema")
	}
	phys, err := newPhysSchema(physical)
	if err != nil {
		return nil, err
	}
	fields, err := resolveFields(proj.Fields, table.Fields, phys, nil)
	if err != nil {
		return nil, err
	}
	return &Plan{Fields: fields}, nil
}

func resolveFields(proj []ProjectedField, table []TableField, phys *physNode, path columnPath) ([]PlanField, error) {
	fields := make([]PlanField, len(proj))
	for i := range proj {
		node, err := resolveField(&proj[i], table, phys, path.append(proj[i].Name))
		if err != nil {
			return nil, err
		}
		fields[i] = PlanField{Name: proj[i].Name, Node: node}
	}
	return fields, nil
}

func resolveField(proj *ProjectedField, table []TableField, phys *physNode, path columnPath) (PlanNode, error) {
	logical, ok := fieldByName(table, proj.Name)
	if !ok {
		return fillNull(proj), nil
	}
	// Tagged fields resolve by id so that renames and reorders in the file
	// are transparent. Untagged fields only arise from schemas derived with
	// IdentityTableSchema over files written without ids; names are all those
	// files have.
	var match *physNode
	if logical.ID > 0 {
		match, ok = phys.field(logical.ID)
	} else {
		match, ok = phys.fieldByName(logical.Name)
	}
	if !ok {
		return fillNull(proj), nil
	}
	if proj.Leaf() {
		return resolveLeaf(proj, match, path)
	}
	return resolveStruct(proj, logical, match, path)
}

func resolveLeaf(proj *ProjectedField, phys *physNode, path columnPath) (PlanNode, error) {
	if !phys.node.Leaf() {
		return nil, resolutionError(path, "the file stores a group where a value column was projected")
	}
	if phys.node.Repeated() {
		return nil, resolutionError(path, "repeated columns cannot be materialized")
	}
	source := phys.node.Type()
	if _, ok := widening(source, proj.Type); !ok {
		return nil, conversionError(path, source, proj.Type)
	}
	return &ReadLeaf{
		Path:   phys.path,
		Column: phys.column,
		Source: source,
		Target: proj.Type,
	}, nil
}

func resolveStruct(proj *ProjectedField, logical *TableField, phys *physNode, path columnPath) (PlanNode, error) {
	if phys.node.Leaf() {
		return nil, resolutionError(path, "the file stores a value column where a struct was projected")
	}
	if phys.node.Repeated() {
		return nil, resolutionError(path, "repeated columns cannot be materialized")
	}
	fields, err := resolveFields(proj.Fields, logical.Fields, phys, path)
	if err != nil {
		return nil, err
	}
	s := &ReadStruct{Fields: fields, def: phys.def}
	// When every projected field fills with nulls the struct still exists in
	// the file, and rows where it is null must come out null rather than as a
	// struct of nulls. Reading one of its columns, values discarded, recovers
	// the definition levels that tell the two apart.
	if !planHasLeaf(fields) && phys.def > 0 {
		if leaf := phys.firstLeaf(); leaf != nil {
			s.presence = &ReadLeaf{
				Path:   leaf.path,
				Column: leaf.column,
				Source: leaf.node.Type(),
				Target: leaf.node.Type(),
			}
		}
	}
	return s, nil
}

func fillNull(proj *ProjectedField) *FillNull {
	if proj.Leaf() {
		return &FillNull{Type: proj.Type}
	}
	fields := make([]PlanField, len(proj.Fields))
	for i := range proj.Fields {
		fields[i] = PlanField{Name: proj.Fields[i].Name, Node: fillNull(&proj.Fields[i])}
	}
	return &FillNull{Fields: fields}
}

func planHasLeaf(fields []PlanField) bool {
	for i := range fields {
		switch node := fields[i].Node.(type) {
		case *ReadLeaf:
			return true
		case *ReadStruct:
			if planHasLeaf(node.Fields) {
				return true
			}
		}
	}
	return false
}

// physNode mirrors one node of a file schema, annotated with what resolution
// needs: the field id, the column index of leaves, and the definition level
// at which groups are present.
type physNode struct {
	name   string
	id     int32
	node   parquet.Node
	path   columnPath
	column int
	def    int
	fields []*physNode
}

func newPhysSchema(root parquet.Node) (*physNode, error) {
	column := 0
	return newPhysNode("", root, nil, 0, &column)
}

func newPhysNode(name string, node parquet.Node, path columnPath, def int, column *int) (*physNode, error) {
	if node.Optional() {
		def++
	}
	p := &physNode{
		name: name,
		node: node,
		path: path,
		def:  def,
	}
	if node.Leaf() {
		p.column = *column
		*column++
		return p, nil
	}
	fields := node.Fields()
	p.fields = make([]*physNode, len(fields))
	ids := make(map[int32]struct{}, len(fields))
	for i, field := range fields {
		child, err := newPhysNode(field.Name(), field, path.append(field.Name()), def, column)
		if err != nil {
			return nil, err
		}
		child.id = int32(field.ID())
		if child.id > 0 {
			if _, dup := ids[child.id]; dup {
				return nil, malformedSchemaError(child.path, fmt.Sprintf("field id %d assigned to more than one field of the group", child.id))
			}
			ids[child.id] = struct{}{}
		}
		p.fields[i] = child
	}
	return p, nil
}

// field returns the child of p tagged with the given id. Untagged fields
// (id <= 0) never match.
func (p *physNode) field(id int32) (*physNode, bool) {
	if id > 0 {
		for _, f := range p.fields {
			if f.id == id {
				return f, true
			}
		}
	}
	return nil, false
}

func (p *physNode) fieldByName(name string) (*physNode, bool) {
	for _, f := range p.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// firstLeaf returns the first leaf under p whose values appear exactly once
// per row, skipping subtrees behind repeated nodes. Returns nil when p has
// none.
func (p *physNode) firstLeaf() *physNode {
	if p.node.Repeated() {
		return nil
	}
	if p.node.Leaf() {
		return p
	}
	for _, f := range p.fields {
		if leaf := f.firstLeaf(); leaf != nil {
			return leaf
		}
	}
	return nil
}
