package icefile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// appendFunc appends one decoded value to a vector, converting from the
// stored type to the target type when the two differ.
type appendFunc func(*Vector, parquet.Value)

// widening returns the append function converting values stored as source
// into a vector of target values, or false when no conversion preserves every
// value exactly. The complete set of safe conversions:
//
//	BOOLEAN              -> BOOLEAN
//	INT32                -> INT32, INT64
//	INT64                -> INT64
//	INT96                -> INT96
//	FLOAT                -> FLOAT, DOUBLE
//	DOUBLE               -> DOUBLE
//	BYTE_ARRAY           -> BYTE_ARRAY
//	FIXED_LEN_BYTE_ARRAY -> FIXED_LEN_BYTE_ARRAY of the same length
//
// INT32 to INT64 sign extends and FLOAT to DOUBLE is exact; no conversion
// ever truncates, rounds, or reinterprets values.
func widening(source, target parquet.Type) (appendFunc, bool) {
	sourceKind, targetKind := source.Kind(), target.Kind()
	if sourceKind == targetKind {
		if sourceKind == parquet.FixedLenByteArray && source.Length() != target.Length() {
			return nil, false
		}
		return appendFuncOf(sourceKind), true
	}
	switch {
	case sourceKind == parquet.Int32 && targetKind == parquet.Int64:
		return appendInt32AsInt64, true
	case sourceKind == parquet.Float && targetKind == parquet.Double:
		return appendFloatAsDouble, true
	}
	return nil, false
}

func appendFuncOf(kind parquet.Kind) appendFunc {
	switch kind {
	case parquet.Boolean:
		return appendBooleanValue
	case parquet.Int32:
		return appendInt32Value
	case parquet.Int64:
		return appendInt64Value
	case parquet.Int96:
		return appendInt96Value
	case parquet.Float:
		return appendFloatValue
	case parquet.Double:
		return appendDoubleValue
	default:
		return appendByteArrayValue
	}
}

func appendBooleanValue(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendBoolean(v.Boolean())
	}
}

func appendInt32Value(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendInt32(v.Int32())
	}
}

func appendInt64Value(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendInt64(v.Int64())
	}
}

func appendFloatValue(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendFloat(v.Float())
	}
}

func appendDoubleValue(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendDouble(v.Double())
	}
}

func appendByteArrayValue(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendByteArray(v.ByteArray())
	}
}

func appendInt96Value(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
		return
	}
	i96 := v.Int96()
	b := make([]byte, 12)
	binary.LittleEndian.PutUint32(b[0:4], i96[0])
	binary.LittleEndian.PutUint32(b[4:8], i96[1])
	binary.LittleEndian.PutUint32(b[8:12], i96[2])
	vec.appendOwnedBytes(b)
}

func appendInt32AsInt64(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendInt64(int64(v.Int32()))
	}
}

func appendFloatAsDouble(vec *Vector, v parquet.Value) {
	if v.IsNull() {
		vec.appendNull()
	} else {
		vec.appendDouble(float64(v.Float()))
	}
}

// valueReadCloser is the reader returned by parquet.NewColumnChunkValueReader.
type valueReadCloser interface {
	parquet.ValueReader
	Close() error
}

// columnSource produces the values of one plan node over one row group.
// prepare decodes the next n rows worth of values for the source and its
// children; materialize appends them to the vector. The phases are separate
// so a decode error surfaces before any vector grows, keeping every vector of
// the batch the same length.
type columnSource interface {
	prepare(n int) error
	materialize(vec *Vector, n int)
	close() error
}

type leafSource struct {
	plan   *ReadLeaf
	reader valueReadCloser
	append appendFunc
	values []parquet.Value
}

func (s *leafSource) prepare(n int) error {
	if cap(s.values) < n {
		s.values = make([]parquet.Value, n)
	}
	s.values = s.values[:n]
	for i := 0; i < n; {
		m, err := s.reader.ReadValues(s.values[i:n])
		i += m
		if err != nil {
			if err == io.EOF {
				if i == n {
					break
				}
				// The row group metadata promised more rows than the column
				// decodes; a truncated or corrupted file.
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("icefile: decoding column %q: %w", columnPath(s.plan.Path), err)
		}
		if m == 0 {
			return fmt.Errorf("icefile: decoding column %q: %w", columnPath(s.plan.Path), io.ErrNoProgress)
		}
	}
	return nil
}

func (s *leafSource) materialize(vec *Vector, n int) {
	for i := 0; i < n; i++ {
		s.append(vec, s.values[i])
	}
}

func (s *leafSource) close() error { return s.reader.Close() }

type structSource struct {
	plan     *ReadStruct
	children []columnSource
	presence *leafSource
	witness  *leafSource
}

func (s *structSource) prepare(n int) error {
	for _, child := range s.children {
		if err := child.prepare(n); err != nil {
			return err
		}
	}
	if s.presence != nil {
		return s.presence.prepare(n)
	}
	return nil
}

func (s *structSource) materialize(vec *Vector, n int) {
	for i, child := range s.children {
		child.materialize(vec.fields[i], n)
	}
	if s.witness != nil {
		for i := 0; i < n; i++ {
			vec.appendStructRow(int(s.witness.values[i].DefinitionLevel()) < s.plan.def)
		}
	} else {
		for i := 0; i < n; i++ {
			vec.appendStructRow(false)
		}
	}
}

func (s *structSource) close() error {
	var lastErr error
	for _, child := range s.children {
		if err := child.close(); err != nil {
			lastErr = err
		}
	}
	if s.presence != nil {
		if err := s.presence.close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

type fillSource struct{}

func (fillSource) prepare(int) error              { return nil }
func (fillSource) materialize(vec *Vector, n int) { vec.fillNulls(n) }
func (fillSource) close() error                   { return nil }

// bindNode builds the column source of a plan node over the column chunks of
// one row group.
func bindNode(node PlanNode, chunks []parquet.ColumnChunk) columnSource {
	switch n := node.(type) {
	case *ReadLeaf:
		return bindLeaf(n, chunks)
	case *ReadStruct:
		s := &structSource{plan: n, children: make([]columnSource, len(n.Fields))}
		for i := range n.Fields {
			s.children[i] = bindNode(n.Fields[i].Node, chunks)
		}
		if n.presence != nil {
			s.presence = bindLeaf(n.presence, chunks)
		}
		s.witness = findWitness(s)
		return s
	case *FillNull:
		return fillSource{}
	default:
		panic("icefile: plan node of unknown type")
	}
}

func bindLeaf(leaf *ReadLeaf, chunks []parquet.ColumnChunk) *leafSource {
	appendValue, ok := widening(leaf.Source, leaf.Target)
	if !ok {
		panic("icefile: plan leaf carries an unsupported conversion")
	}
	return &leafSource{
		plan:   leaf,
		reader: parquet.NewColumnChunkValueReader(chunks[leaf.Column]),
		append: appendValue,
	}
}

// findWitness returns the leaf whose definition levels witness the presence
// of the struct: the presence column when one was planned, otherwise the
// first leaf read under the struct. A nil witness means the struct can never
// be null, or that nothing in the file can tell a null struct from a struct
// of nulls; rows then always carry a non-null struct.
func findWitness(s *structSource) *leafSource {
	if s.presence != nil {
		return s.presence
	}
	for _, child := range s.children {
		switch c := child.(type) {
		case *leafSource:
			return c
		case *structSource:
			if c.witness != nil {
				return c.witness
			}
		}
	}
	return nil
}
