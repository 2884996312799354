package icefile

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
	"github.com/segmentio/encoding/json"
)

// MetadataSchemaKey is the key of the footer key/value metadata property under
// which writers of iceberg table data files embed the table schema as JSON.
const MetadataSchemaKey = "iceberg.schema"

// TableSchema is the logical schema of a table: the authoritative mapping
// between field names and field ids at one version of the table. Field ids are
// permanent; names, order, and nesting change across versions while ids never
// do, which is what makes data files written under older schema versions
// readable.
//
// TableSchema values are immutable once constructed and safe to share across
// goroutines.
type TableSchema struct {
	Fields []TableField
}

// TableField is one field of a table schema. A field with a non-empty Fields
// slice is a struct; every other field is a leaf. Value types are not
// recorded: resolution only needs ids and names, the type a column
// materializes as is dictated by the projection and checked against the file.
type TableField struct {
	ID     int32
	Name   string
	Fields []TableField
}

// Leaf returns true if f is not a struct field.
func (f *TableField) Leaf() bool { return len(f.Fields) == 0 }

// Field returns the first field of s named name, in declaration order.
func (s *TableSchema) Field(name string) (*TableField, bool) {
	return fieldByName(s.Fields, name)
}

// Field returns the first child of f named name, in declaration order.
func (f *TableField) Field(name string) (*TableField, bool) {
	return fieldByName(f.Fields, name)
}

// Table schemas which accumulated duplicate names over their history are
// tolerated; lookups always take the first match in declaration order.
func fieldByName(fields []TableField, name string) (*TableField, bool) {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i], true
		}
	}
	return nil, false
}

// String returns a parquet-style text representation of the table schema.
func (s *TableSchema) String() string { return sprint(func(pw *printWriter) { printTableSchema(pw, s) }) }

// ParseTableSchema parses the JSON representation of an iceberg table schema.
//
// Only the properties resolution depends on are retained: field ids, names,
// and struct nesting. Fields of list or map types keep their id and name but
// are recorded as leaves, since container evolution is not supported.
func ParseTableSchema(data []byte) (*TableSchema, error) {
	schema := icebergSchema{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("icefile: parsing iceberg schema: %w", err)
	}
	if schema.Type != "struct" {
		return nil, fmt.Errorf("icefile: parsing iceberg schema: root type is %q, not \"struct\"", schema.Type)
	}
	return &TableSchema{Fields: tableFieldsOf(schema.Fields)}, nil
}

// FileTableSchema returns the table schema embedded in the footer metadata of
// f under MetadataSchemaKey. The boolean is false when f carries none.
func FileTableSchema(f *parquet.File) (*TableSchema, bool, error) {
	value, ok := f.Lookup(MetadataSchemaKey)
	if !ok {
		return nil, false, nil
	}
	schema, err := ParseTableSchema([]byte(value))
	if err != nil {
		return nil, true, err
	}
	return schema, true, nil
}

// IdentityTableSchema derives a table schema from a file schema, lifting the
// field ids and names recorded at write time. Reading a file through its
// identity schema applies no evolution at all.
func IdentityTableSchema(node parquet.Node) *TableSchema {
	return &TableSchema{Fields: identityFieldsOf(node)}
}

func identityFieldsOf(node parquet.Node) []TableField {
	fields := node.Fields()
	table := make([]TableField, len(fields))
	for i, field := range fields {
		table[i].ID = int32(field.ID())
		table[i].Name = field.Name()
		if !field.Leaf() {
			table[i].Fields = identityFieldsOf(field)
		}
	}
	return table
}

type icebergSchema struct {
	Type     string         `json:"type"`
	SchemaID int32          `json:"schema-id"`
	Fields   []icebergField `json:"fields"`
}

type icebergField struct {
	ID       int32       `json:"id"`
	Name     string      `json:"name"`
	Required bool        `json:"required"`
	Type     icebergType `json:"type"`
}

// icebergType is either a primitive type name ("long", "int", ...) or a
// nested object ({"type": "struct", "fields": [...]}, list, map).
type icebergType struct {
	Type   string         `json:"type"`
	Fields []icebergField `json:"fields"`
}

func (t *icebergType) UnmarshalJSON(data []byte) error {
	if data = bytes.TrimSpace(data); len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.Type)
	}
	type rawType icebergType
	return json.Unmarshal(data, (*rawType)(t))
}

func tableFieldsOf(fields []icebergField) []TableField {
	table := make([]TableField, len(fields))
	for i := range fields {
		table[i].ID = fields[i].ID
		table[i].Name = fields[i].Name
		if fields[i].Type.Type == "struct" {
			table[i].Fields = tableFieldsOf(fields[i].Type.Fields)
		}
	}
	return table
}
