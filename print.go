package icefile

import (
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// PrintPlan writes a textual representation of plan to w, one line per
// projected field:
//
//	plan {
//		id -> read(column=0, int64)
//		col -> struct {
//			a -> read(column=1, int32 -> int64)
//			d -> null(int32)
//		}
//	}
func PrintPlan(w io.Writer, plan *Plan) error {
	pw := &printWriter{writer: w}
	printPlan(pw, plan)
	return pw.err
}

// PrintTableSchema writes a textual representation of schema to w, one line
// per field, each prefixed with its field id.
func PrintTableSchema(w io.Writer, schema *TableSchema) error {
	pw := &printWriter{writer: w}
	printTableSchema(pw, schema)
	return pw.err
}

func sprint(print func(*printWriter)) string {
	s := new(strings.Builder)
	print(&printWriter{writer: s})
	return s.String()
}

func printPlan(pw *printWriter, plan *Plan) {
	pw.WriteString("plan {")
	if len(plan.Fields) > 0 {
		indent := &printIndent{pattern: "\t", newline: "\n", repeat: 1}
		indent.writeNewLine(pw)
		for i := range plan.Fields {
			printPlanField(pw, &plan.Fields[i], indent)
			indent.writeNewLine(pw)
		}
	}
	pw.WriteString("}")
}

func printPlanField(pw *printWriter, field *PlanField, indent *printIndent) {
	indent.writeTo(pw)
	pw.WriteString(field.Name)
	pw.WriteString(" -> ")
	printPlanNode(pw, field.Node, indent)
}

func printPlanNode(pw *printWriter, node PlanNode, indent *printIndent) {
	switch n := node.(type) {
	case *ReadLeaf:
		fmt.Fprintf(pw, "read(column=%d, ", n.Column)
		printType(pw, n.Source)
		if n.Source.Kind() != n.Target.Kind() {
			pw.WriteString(" -> ")
			printType(pw, n.Target)
		}
		pw.WriteString(")")
	case *ReadStruct:
		pw.WriteString("struct {")
		printPlanFields(pw, n.Fields, indent)
		pw.WriteString("}")
	case *FillNull:
		if n.Struct() {
			pw.WriteString("null struct {")
			printPlanFields(pw, n.Fields, indent)
			pw.WriteString("}")
		} else {
			pw.WriteString("null(")
			printType(pw, n.Type)
			pw.WriteString(")")
		}
	default:
		panic("icefile: plan node of unknown type")
	}
}

func printPlanFields(pw *printWriter, fields []PlanField, indent *printIndent) {
	if len(fields) == 0 {
		return
	}
	indent.writeNewLine(pw)
	indent.push()
	for i := range fields {
		printPlanField(pw, &fields[i], indent)
		indent.writeNewLine(pw)
	}
	indent.pop()
	indent.writeTo(pw)
}

func printTableSchema(pw *printWriter, schema *TableSchema) {
	pw.WriteString("table {")
	if len(schema.Fields) > 0 {
		indent := &printIndent{pattern: "\t", newline: "\n", repeat: 1}
		indent.writeNewLine(pw)
		for i := range schema.Fields {
			printTableField(pw, &schema.Fields[i], indent)
			indent.writeNewLine(pw)
		}
	}
	pw.WriteString("}")
}

func printTableField(pw *printWriter, field *TableField, indent *printIndent) {
	indent.writeTo(pw)
	fmt.Fprintf(pw, "%d: %s", field.ID, field.Name)
	if !field.Leaf() {
		pw.WriteString(" struct {")
		indent.writeNewLine(pw)
		indent.push()
		for i := range field.Fields {
			printTableField(pw, &field.Fields[i], indent)
			indent.writeNewLine(pw)
		}
		indent.pop()
		indent.writeTo(pw)
		pw.WriteString("}")
	}
}

func printType(pw *printWriter, t parquet.Type) {
	switch t.Kind() {
	case parquet.Boolean:
		pw.WriteString("boolean")
	case parquet.Int32:
		pw.WriteString("int32")
	case parquet.Int64:
		pw.WriteString("int64")
	case parquet.Int96:
		pw.WriteString("int96")
	case parquet.Float:
		pw.WriteString("float")
	case parquet.Double:
		pw.WriteString("double")
	case parquet.ByteArray:
		pw.WriteString("binary")
	case parquet.FixedLenByteArray:
		fmt.Fprintf(pw, "fixed_len_byte_array(%d)", t.Length())
	default:
		pw.WriteString("<?>")
	}
}

type printIndent struct {
	pattern string
	newline string
	repeat  int
}

func (i *printIndent) push() {
	i.repeat++
}

func (i *printIndent) pop() {
	i.repeat--
}

func (i *printIndent) writeTo(w io.StringWriter) {
	if i.pattern != "" {
		for n := i.repeat; n > 0; n-- {
			w.WriteString(i.pattern)
		}
	}
}

func (i *printIndent) writeNewLine(w io.StringWriter) {
	if i.newline != "" {
		w.WriteString(i.newline)
	}
}

type printWriter struct {
	writer io.Writer
	err    error
}

func (w *printWriter) Write(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.writer.Write(b)
	if err != nil {
		w.err = err
	}
	return n, err
}

func (w *printWriter) WriteString(s string) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := io.WriteString(w.writer, s)
	if err != nil {
		w.err = err
	}
	return n, err
}

var (
	_ io.StringWriter = (*printWriter)(nil)
)
