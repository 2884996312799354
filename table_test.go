package icefile_test

import (
	"strings"
	"testing"

	"github.com/segmentio/icefile"
)

func TestParseTableSchema(t *testing.T) {
	tests := []struct {
		scenario string
		input    string
		schema   string
	}{
		{
			scenario: "flat schema",
			input: `{
				"type": "struct",
				"schema-id": 0,
				"fields": [
					{"id": 1, "name": "id", "required": true, "type": "long"},
					{"id": 2, "name": "name", "required": false, "type": "string"}
				]
			}`,
			schema: `table {
	1: id
	2: name
}`,
		},

		{
			scenario: "nested structs",
			input: `{
				"type": "struct",
				"fields": [
					{"id": 1, "name": "id", "required": true, "type": "long"},
					{"id": 2, "name": "col", "required": false, "type": {
						"type": "struct",
						"fields": [
							{"id": 3, "name": "a", "required": false, "type": "int"},
							{"id": 4, "name": "b", "required": false, "type": {
								"type": "struct",
								"fields": [
									{"id": 5, "name": "c", "required": false, "type": "double"}
								]
							}}
						]
					}}
				]
			}`,
			schema: `table {
	1: id
	2: col struct {
		3: a
		4: b struct {
			5: c
		}
	}
}`,
		},

		{
			scenario: "lists and maps become leaves",
			input: `{
				"type": "struct",
				"fields": [
					{"id": 1, "name": "tags", "required": false, "type": {
						"type": "list",
						"element-id": 2,
						"element": "string",
						"element-required": false
					}},
					{"id": 3, "name": "attrs", "required": false, "type": {
						"type": "map",
						"key-id": 4,
						"key": "string",
						"value-id": 5,
						"value": "string",
						"value-required": false
					}}
				]
			}`,
			schema: `table {
	1: tags
	3: attrs
}`,
		},

		{
			scenario: "empty schema",
			input:    `{"type": "struct", "fields": []}`,
			schema:   `table {}`,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			schema, err := icefile.ParseTableSchema([]byte(test.input))
			if err != nil {
				t.Fatal(err)
			}
			if got := schema.String(); got != test.schema {
				t.Errorf("wrong schema:\nwant = %s\ngot  = %s", test.schema, got)
			}
		})
	}
}

func TestParseTableSchemaErrors(t *testing.T) {
	tests := []struct {
		scenario string
		input    string
	}{
		{
			scenario: "root is not a struct",
			input:    `{"type": "list", "fields": []}`,
		},
		{
			scenario: "malformed json",
			input:    `{"type": "struct", "fields": [`,
		},
		{
			scenario: "fields of the wrong type",
			input:    `{"type": "struct", "fields": 42}`,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			_, err := icefile.ParseTableSchema([]byte(test.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), "parsing iceberg schema") {
				t.Errorf("error does not name the operation: %v", err)
			}
		})
	}
}

func TestIdentityTableSchema(t *testing.T) {
	schema := icefile.IdentityTableSchema(fileSchemaV1())
	want := `table {
	2: col struct {
		3: a
		4: b
		5: c
	}
	1: id
}`
	if got := schema.String(); got != want {
		t.Errorf("wrong schema:\nwant = %s\ngot  = %s", want, got)
	}
}

func TestTableSchemaFieldLookup(t *testing.T) {
	schema := &icefile.TableSchema{Fields: []icefile.TableField{
		{ID: 1, Name: "id"},
		{ID: 2, Name: "col", Fields: []icefile.TableField{
			{ID: 3, Name: "a"},
		}},
		{ID: 7, Name: "x"},
		{ID: 8, Name: "x"},
	}}

	col, ok := schema.Field("col")
	if !ok || col.ID != 2 || col.Leaf() {
		t.Fatalf("wrong col field: %+v, %t", col, ok)
	}
	a, ok := col.Field("a")
	if !ok || a.ID != 3 || !a.Leaf() {
		t.Fatalf("wrong col.a field: %+v, %t", a, ok)
	}
	if _, ok := schema.Field("missing"); ok {
		t.Error("lookup of a missing field succeeded")
	}
	if _, ok := col.Field("id"); ok {
		t.Error("nested lookup escaped its struct")
	}

	// Lookups in schemas that accumulated duplicate names always take the
	// first field in declaration order.
	x, ok := schema.Field("x")
	if !ok || x.ID != 7 {
		t.Fatalf("wrong duplicate resolution: %+v, %t", x, ok)
	}
}
