package icefile

import (
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/parquet-go/parquet-go"
)

// structKind marks struct vectors; parquet kinds are all >= 0.
const structKind = parquet.Kind(-1)

// Batch is a column-oriented buffer of rows produced by readers. A batch is
// shaped by the plan of the reader filling it on the first Read call, then
// reused across calls: the contents are valid until the batch is passed to
// Read again.
//
// The zero value is an empty batch ready for use.
type Batch struct {
	rows    int
	columns []*Vector
	plan    *Plan
}

// NumRows returns the number of rows held by the batch.
func (b *Batch) NumRows() int { return b.rows }

// Columns returns the column vectors of the batch, in plan order.
func (b *Batch) Columns() []*Vector { return b.columns }

// Column returns the i-th column vector of the batch.
func (b *Batch) Column(i int) *Vector { return b.columns[i] }

// Reset clears the batch, detaching it from the plan that shaped it.
func (b *Batch) Reset() {
	b.rows = 0
	b.columns = nil
	b.plan = nil
}

// RowString returns a textual representation of row i, in column order, for
// example `[1, {a: 2, b: NULL}]`.
func (b *Batch) RowString(i int) string {
	s := new(strings.Builder)
	s.WriteByte('[')
	for j, col := range b.columns {
		if j > 0 {
			s.WriteString(", ")
		}
		s.WriteString(col.ValueString(i))
	}
	s.WriteByte(']')
	return s.String()
}

// reshape prepares the batch to receive rows of plan, allocating vectors on
// the first call and truncating them on subsequent calls.
func (b *Batch) reshape(plan *Plan) {
	if b.plan != plan {
		b.plan = plan
		b.columns = make([]*Vector, len(plan.Fields))
		for i := range plan.Fields {
			b.columns[i] = vectorOf(plan.Fields[i].Name, plan.Fields[i].Node)
		}
	} else {
		for _, col := range b.columns {
			col.reset()
		}
	}
	b.rows = 0
}

// Vector is one column of a batch: a dense sequence of values of a single
// parquet kind, or a struct of child vectors, with nulls tracked in a bitmap.
// Null slots still occupy a position in the value storage so that value
// indexes and row indexes coincide.
type Vector struct {
	name    string
	kind    parquet.Kind
	length  int
	nulls   *roaring.Bitmap
	bools   []bool
	int32s  []int32
	int64s  []int64
	floats  []float32
	doubles []float64
	bytes   [][]byte
	fields  []*Vector
}

func vectorOf(name string, node PlanNode) *Vector {
	switch n := node.(type) {
	case *ReadLeaf:
		return newLeafVector(name, n.Target.Kind())
	case *ReadStruct:
		return newStructVector(name, n.Fields)
	case *FillNull:
		if n.Struct() {
			return newStructVector(name, n.Fields)
		}
		return newLeafVector(name, n.Type.Kind())
	default:
		panic("icefile: plan node of unknown type")
	}
}

func newLeafVector(name string, kind parquet.Kind) *Vector {
	return &Vector{name: name, kind: kind, nulls: roaring.New()}
}

func newStructVector(name string, fields []PlanField) *Vector {
	v := &Vector{name: name, kind: structKind, nulls: roaring.New()}
	v.fields = make([]*Vector, len(fields))
	for i := range fields {
		v.fields[i] = vectorOf(fields[i].Name, fields[i].Node)
	}
	return v
}

// Name returns the field name the vector materializes.
func (v *Vector) Name() string { return v.name }

// Kind returns the parquet kind of the vector's values. Struct vectors have
// no kind; IsStruct reports those.
func (v *Vector) Kind() parquet.Kind { return v.kind }

// IsStruct returns true when the vector holds a struct of child vectors.
func (v *Vector) IsStruct() bool { return v.kind == structKind }

// Len returns the number of rows held by the vector.
func (v *Vector) Len() int { return v.length }

// IsNull returns true when row i holds a null.
func (v *Vector) IsNull(i int) bool { return v.nulls.Contains(uint32(i)) }

// Boolean returns the value of row i of a BOOLEAN vector.
func (v *Vector) Boolean(i int) bool { return v.bools[i] }

// Int32 returns the value of row i of an INT32 vector.
func (v *Vector) Int32(i int) int32 { return v.int32s[i] }

// Int64 returns the value of row i of an INT64 vector.
func (v *Vector) Int64(i int) int64 { return v.int64s[i] }

// Float returns the value of row i of a FLOAT vector.
func (v *Vector) Float(i int) float32 { return v.floats[i] }

// Double returns the value of row i of a DOUBLE vector.
func (v *Vector) Double(i int) float64 { return v.doubles[i] }

// ByteArray returns the value of row i of a BYTE_ARRAY, FIXED_LEN_BYTE_ARRAY,
// or INT96 vector. The returned slice is owned by the batch and does not
// alias file buffers.
func (v *Vector) ByteArray(i int) []byte { return v.bytes[i] }

// Fields returns the child vectors of a struct vector, in plan order.
func (v *Vector) Fields() []*Vector { return v.fields }

// Field returns the first child vector named name, or nil.
func (v *Vector) Field(name string) *Vector {
	for _, f := range v.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// ValueString returns a textual representation of row i: NULL for nulls,
// quoted text for byte arrays, `{a: 1, b: NULL}` for structs.
func (v *Vector) ValueString(i int) string {
	if v.IsNull(i) {
		return "NULL"
	}
	switch v.kind {
	case structKind:
		s := new(strings.Builder)
		s.WriteByte('{')
		for j, f := range v.fields {
			if j > 0 {
				s.WriteString(", ")
			}
			s.WriteString(f.name)
			s.WriteString(": ")
			s.WriteString(f.ValueString(i))
		}
		s.WriteByte('}')
		return s.String()
	case parquet.Boolean:
		return strconv.FormatBool(v.bools[i])
	case parquet.Int32:
		return strconv.FormatInt(int64(v.int32s[i]), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.int64s[i], 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.floats[i]), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.doubles[i], 'g', -1, 64)
	default:
		return strconv.Quote(string(v.bytes[i]))
	}
}

func (v *Vector) reset() {
	v.length = 0
	v.nulls.Clear()
	v.bools = v.bools[:0]
	v.int32s = v.int32s[:0]
	v.int64s = v.int64s[:0]
	v.floats = v.floats[:0]
	v.doubles = v.doubles[:0]
	v.bytes = v.bytes[:0]
	for _, f := range v.fields {
		f.reset()
	}
}

// fillNulls appends n rows materializing a column absent from the file: leaf
// rows are null, struct rows are structs of recursively absent fields. The
// struct rows themselves are not null; that is reserved for rows where a
// physically present struct holds no value.
func (v *Vector) fillNulls(n int) {
	if v.kind == structKind {
		for _, f := range v.fields {
			f.fillNulls(n)
		}
		v.length += n
		return
	}
	v.appendNulls(n)
}

// appendNull appends one null row to a value vector, materialized as the zero
// value in the value storage to keep indexes aligned.
func (v *Vector) appendNull() {
	v.nulls.Add(uint32(v.length))
	switch v.kind {
	case parquet.Boolean:
		v.bools = append(v.bools, false)
	case parquet.Int32:
		v.int32s = append(v.int32s, 0)
	case parquet.Int64:
		v.int64s = append(v.int64s, 0)
	case parquet.Float:
		v.floats = append(v.floats, 0)
	case parquet.Double:
		v.doubles = append(v.doubles, 0)
	default:
		v.bytes = append(v.bytes, nil)
	}
	v.length++
}

// appendNulls appends n null rows to a value vector at once.
func (v *Vector) appendNulls(n int) {
	v.nulls.AddRange(uint64(v.length), uint64(v.length+n))
	switch v.kind {
	case parquet.Boolean:
		v.bools = append(v.bools, make([]bool, n)...)
	case parquet.Int32:
		v.int32s = append(v.int32s, make([]int32, n)...)
	case parquet.Int64:
		v.int64s = append(v.int64s, make([]int64, n)...)
	case parquet.Float:
		v.floats = append(v.floats, make([]float32, n)...)
	case parquet.Double:
		v.doubles = append(v.doubles, make([]float64, n)...)
	default:
		v.bytes = append(v.bytes, make([][]byte, n)...)
	}
	v.length += n
}

// appendStructRow appends one struct row. The child vectors have already
// received their row; only the struct-level presence is recorded here.
func (v *Vector) appendStructRow(null bool) {
	if null {
		v.nulls.Add(uint32(v.length))
	}
	v.length++
}

func (v *Vector) appendBoolean(value bool) {
	v.bools = append(v.bools, value)
	v.length++
}

func (v *Vector) appendInt32(value int32) {
	v.int32s = append(v.int32s, value)
	v.length++
}

func (v *Vector) appendInt64(value int64) {
	v.int64s = append(v.int64s, value)
	v.length++
}

func (v *Vector) appendFloat(value float32) {
	v.floats = append(v.floats, value)
	v.length++
}

func (v *Vector) appendDouble(value float64) {
	v.doubles = append(v.doubles, value)
	v.length++
}

// appendByteArray appends a copy of value; batches never alias file buffers.
func (v *Vector) appendByteArray(value []byte) {
	v.bytes = append(v.bytes, append([]byte(nil), value...))
	v.length++
}

func (v *Vector) appendOwnedBytes(value []byte) {
	v.bytes = append(v.bytes, value)
	v.length++
}
