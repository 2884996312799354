package main

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/segmentio/icefile"
)

// selectProjection narrows proj to a comma-separated list of dotted column
// paths, in the order the paths are given. A path naming a struct keeps the
// whole subtree; sibling paths under one struct merge into a single field.
func selectProjection(proj icefile.Projection, selector string) (icefile.Projection, error) {
	sel := newSelection()
	for _, path := range strings.Split(selector, ",") {
		if path = strings.TrimSpace(path); path == "" {
			return icefile.Projection{}, fmt.Errorf("empty column path in %q", selector)
		}
		sel.add(strings.Split(path, "."))
	}
	fields, err := sel.apply(proj.Fields, "")
	if err != nil {
		return icefile.Projection{}, err
	}
	return icefile.Projection{Fields: fields}, nil
}

type selection struct {
	names    []string
	children map[string]*selection
	all      bool
}

func newSelection() *selection {
	return &selection{children: make(map[string]*selection)}
}

func (s *selection) add(path []string) {
	if len(path) == 0 {
		s.all = true
		return
	}
	child, ok := s.children[path[0]]
	if !ok {
		child = newSelection()
		s.children[path[0]] = child
		s.names = append(s.names, path[0])
	}
	child.add(path[1:])
}

func (s *selection) apply(fields []icefile.ProjectedField, prefix string) ([]icefile.ProjectedField, error) {
	selected := make([]icefile.ProjectedField, 0, len(s.names))
	for _, name := range s.names {
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}
		var field *icefile.ProjectedField
		for i := range fields {
			if fields[i].Name == name {
				field = &fields[i]
				break
			}
		}
		if field == nil {
			return nil, fmt.Errorf("no column named %q", full)
		}
		child := s.children[name]
		if child.all {
			selected = append(selected, *field)
			continue
		}
		if field.Leaf() {
			return nil, fmt.Errorf("column %q is not a struct", full)
		}
		sub, err := child.apply(field.Fields, full)
		if err != nil {
			return nil, err
		}
		selected = append(selected, icefile.ProjectedField{Name: name, Fields: sub})
	}
	return selected, nil
}

// tableProjection derives the projection a reader of the given table version
// requests: the table's names, order, and nesting, with leaf types bound from
// the file by field id. Leaves the file does not store become null columns
// whatever type they are requested at, so a byte array stands in for them.
func tableProjection(table *icefile.TableSchema, root parquet.Node) icefile.Projection {
	return icefile.Projection{Fields: tableProjectionFields(table.Fields, root)}
}

func tableProjectionFields(fields []icefile.TableField, node parquet.Node) []icefile.ProjectedField {
	projected := make([]icefile.ProjectedField, len(fields))
	for i := range fields {
		phys := childByID(node, fields[i].ID)
		projected[i].Name = fields[i].Name
		if fields[i].Leaf() {
			if phys != nil && phys.Leaf() {
				projected[i].Type = phys.Type()
			} else {
				projected[i].Type = parquet.ByteArrayType
			}
		} else {
			projected[i].Fields = tableProjectionFields(fields[i].Fields, phys)
		}
	}
	return projected
}

func childByID(node parquet.Node, id int32) parquet.Node {
	if node == nil {
		return nil
	}
	for _, field := range node.Fields() {
		if int32(field.ID()) == id {
			return field
		}
	}
	return nil
}
