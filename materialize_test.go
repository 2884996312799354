package icefile

import (
	"bytes"
	"math"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/deprecated"
)

func TestWidening(t *testing.T) {
	tests := []struct {
		scenario string
		source   parquet.Type
		target   parquet.Type
		ok       bool
	}{
		{"boolean to boolean", parquet.BooleanType, parquet.BooleanType, true},
		{"int32 to int32", parquet.Int32Type, parquet.Int32Type, true},
		{"int64 to int64", parquet.Int64Type, parquet.Int64Type, true},
		{"int96 to int96", parquet.Int96Type, parquet.Int96Type, true},
		{"float to float", parquet.FloatType, parquet.FloatType, true},
		{"double to double", parquet.DoubleType, parquet.DoubleType, true},
		{"byte array to byte array", parquet.ByteArrayType, parquet.ByteArrayType, true},
		{"fixed to fixed of the same length", parquet.FixedLenByteArrayType(16), parquet.FixedLenByteArrayType(16), true},

		{"int32 to int64", parquet.Int32Type, parquet.Int64Type, true},
		{"float to double", parquet.FloatType, parquet.DoubleType, true},

		{"int64 to int32", parquet.Int64Type, parquet.Int32Type, false},
		{"double to float", parquet.DoubleType, parquet.FloatType, false},
		{"int32 to double", parquet.Int32Type, parquet.DoubleType, false},
		{"int64 to double", parquet.Int64Type, parquet.DoubleType, false},
		{"float to int32", parquet.FloatType, parquet.Int32Type, false},
		{"boolean to int32", parquet.BooleanType, parquet.Int32Type, false},
		{"byte array to fixed", parquet.ByteArrayType, parquet.FixedLenByteArrayType(4), false},
		{"fixed to fixed of another length", parquet.FixedLenByteArrayType(16), parquet.FixedLenByteArrayType(8), false},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			if _, ok := widening(test.source, test.target); ok != test.ok {
				t.Errorf("widening(%s, %s) = %t, expected %t", test.source, test.target, ok, test.ok)
			}
		})
	}
}

func TestAppendInt32AsInt64SignExtends(t *testing.T) {
	appendValue, ok := widening(parquet.Int32Type, parquet.Int64Type)
	if !ok {
		t.Fatal("int32 to int64 is not a widening conversion")
	}

	vec := newLeafVector("x", parquet.Int64)
	appendValue(vec, parquet.Int32Value(math.MinInt32))
	appendValue(vec, parquet.Int32Value(-1))
	appendValue(vec, parquet.Value{})

	if got := vec.Int64(0); got != math.MinInt32 {
		t.Errorf("want = %d, got = %d", math.MinInt32, got)
	}
	if got := vec.Int64(1); got != -1 {
		t.Errorf("want = -1, got = %d", got)
	}
	if !vec.IsNull(2) {
		t.Error("null value did not convert to null")
	}
}

func TestAppendFloatAsDoubleIsExact(t *testing.T) {
	appendValue, ok := widening(parquet.FloatType, parquet.DoubleType)
	if !ok {
		t.Fatal("float to double is not a widening conversion")
	}

	vec := newLeafVector("x", parquet.Double)
	appendValue(vec, parquet.FloatValue(0.1))

	if want, got := float64(float32(0.1)), vec.Double(0); got != want {
		t.Errorf("want = %v, got = %v", want, got)
	}
}

// INT96 values materialize as their 12 byte little-endian encoding.
func TestAppendInt96Bytes(t *testing.T) {
	appendValue, ok := widening(parquet.Int96Type, parquet.Int96Type)
	if !ok {
		t.Fatal("int96 to int96 is not a widening conversion")
	}

	vec := newLeafVector("x", parquet.Int96)
	appendValue(vec, parquet.Int96Value(deprecated.Int96{0x01020304, 0x05060708, 0x090A0B0C}))

	want := []byte{4, 3, 2, 1, 8, 7, 6, 5, 0x0C, 0x0B, 0x0A, 9}
	if got := vec.ByteArray(0); !bytes.Equal(got, want) {
		t.Errorf("wrong bytes:\nwant = %x\ngot  = %x", want, got)
	}
}
