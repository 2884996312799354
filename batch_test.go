package icefile

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func TestVectorValueString(t *testing.T) {
	tests := []struct {
		scenario string
		vector   func() *Vector
		want     string
	}{
		{
			scenario: "boolean",
			vector: func() *Vector {
				v := newLeafVector("x", parquet.Boolean)
				v.appendBoolean(true)
				return v
			},
			want: "true",
		},

		{
			scenario: "int32",
			vector: func() *Vector {
				v := newLeafVector("x", parquet.Int32)
				v.appendInt32(-5)
				return v
			},
			want: "-5",
		},

		{
			scenario: "int64",
			vector: func() *Vector {
				v := newLeafVector("x", parquet.Int64)
				v.appendInt64(9000000000)
				return v
			},
			want: "9000000000",
		},

		{
			scenario: "float",
			vector: func() *Vector {
				v := newLeafVector("x", parquet.Float)
				v.appendFloat(0.5)
				return v
			},
			want: "0.5",
		},

		{
			scenario: "double",
			vector: func() *Vector {
				v := newLeafVector("x", parquet.Double)
				v.appendDouble(2.5)
				return v
			},
			want: "2.5",
		},

		{
			scenario: "byte array",
			vector: func() *Vector {
				v := newLeafVector("x", parquet.ByteArray)
				v.appendByteArray([]byte(`quo"ted`))
				return v
			},
			want: `"quo\"ted"`,
		},

		{
			scenario: "null",
			vector: func() *Vector {
				v := newLeafVector("x", parquet.Int32)
				v.appendNull()
				return v
			},
			want: "NULL",
		},

		{
			scenario: "struct",
			vector: func() *Vector {
				v := newStructVector("x", []PlanField{
					{Name: "a", Node: &FillNull{Type: parquet.Int32Type}},
					{Name: "b", Node: &FillNull{Type: parquet.Int32Type}},
				})
				v.fields[0].appendInt32(1)
				v.fields[1].appendNull()
				v.appendStructRow(false)
				return v
			},
			want: "{a: 1, b: NULL}",
		},

		{
			scenario: "null struct",
			vector: func() *Vector {
				v := newStructVector("x", []PlanField{
					{Name: "a", Node: &FillNull{Type: parquet.Int32Type}},
				})
				v.fields[0].appendNull()
				v.appendStructRow(true)
				return v
			},
			want: "NULL",
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			if got := test.vector().ValueString(0); got != test.want {
				t.Errorf("wrong value: want = %s, got = %s", test.want, got)
			}
		})
	}
}

// A column absent from the file materializes as null leaves under non-null
// structs, not as null structs.
func TestVectorFillNulls(t *testing.T) {
	v := newStructVector("col", []PlanField{
		{Name: "a", Node: &FillNull{Type: parquet.Int64Type}},
		{Name: "b", Node: &FillNull{Fields: []PlanField{
			{Name: "c", Node: &FillNull{Type: parquet.Int32Type}},
		}}},
	})
	v.fillNulls(2)

	if v.Len() != 2 {
		t.Fatalf("wrong length: want = 2, got = %d", v.Len())
	}
	for i := 0; i < 2; i++ {
		if v.IsNull(i) {
			t.Errorf("row %d: filled struct must not be null itself", i)
		}
		if want, got := "{a: NULL, b: {c: NULL}}", v.ValueString(i); got != want {
			t.Errorf("row %d: wrong value: want = %s, got = %s", i, want, got)
		}
	}
}

// Null rows still occupy a slot in the value storage so that value indexes
// and row indexes coincide.
func TestVectorNullSlotsKeepAlignment(t *testing.T) {
	v := newLeafVector("x", parquet.Int32)
	v.appendNulls(3)
	v.appendInt32(7)

	if v.Len() != 4 {
		t.Fatalf("wrong length: want = 4, got = %d", v.Len())
	}
	for i := 0; i < 3; i++ {
		if !v.IsNull(i) {
			t.Errorf("row %d: expected null", i)
		}
		if v.Int32(i) != 0 {
			t.Errorf("row %d: null slot holds %d", i, v.Int32(i))
		}
	}
	if v.IsNull(3) {
		t.Error("row 3: expected a value")
	}
	if v.Int32(3) != 7 {
		t.Errorf("row 3: want = 7, got = %d", v.Int32(3))
	}
}

func TestVectorByteArrayDoesNotAlias(t *testing.T) {
	buf := []byte("abc")
	v := newLeafVector("x", parquet.ByteArray)
	v.appendByteArray(buf)
	buf[0] = 'Z'
	if got := v.ByteArray(0); !bytes.Equal(got, []byte("abc")) {
		t.Errorf("vector aliases the caller's buffer: %q", got)
	}
}

func TestBatchReshape(t *testing.T) {
	plan1 := &Plan{Fields: []PlanField{
		{Name: "a", Node: &FillNull{Type: parquet.Int64Type}},
		{Name: "b", Node: &FillNull{Type: parquet.Int32Type}},
	}}
	plan2 := &Plan{Fields: []PlanField{
		{Name: "c", Node: &FillNull{Type: parquet.Int32Type}},
	}}

	batch := new(Batch)
	batch.reshape(plan1)
	if len(batch.Columns()) != 2 {
		t.Fatalf("wrong number of columns: want = 2, got = %d", len(batch.Columns()))
	}
	a := batch.Column(0)
	a.appendInt64(1)
	batch.rows = 1

	// Reshaping to the same plan reuses the vectors, truncated.
	batch.reshape(plan1)
	if batch.Column(0) != a {
		t.Error("reshaping to the same plan reallocated the vectors")
	}
	if batch.NumRows() != 0 || a.Len() != 0 {
		t.Errorf("reshaping did not truncate: rows = %d, len = %d", batch.NumRows(), a.Len())
	}

	// Reshaping to another plan rebuilds the columns.
	batch.reshape(plan2)
	if len(batch.Columns()) != 1 || batch.Column(0).Name() != "c" {
		t.Errorf("reshaping to a new plan kept the old columns: %v", batch.Columns())
	}

	batch.Reset()
	if batch.Columns() != nil || batch.NumRows() != 0 {
		t.Error("reset did not clear the batch")
	}
}
