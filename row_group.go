package icefile

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// RowGroupReader materializes the rows of one row group, following the plan
// of the file reader that created it. Batches come out in storage order, at
// most one batch size of rows at a time.
//
// Row group readers obtained from FileReader.RowGroups are independent: each
// holds its own column readers and may be driven from its own goroutine.
type RowGroupReader struct {
	plan      *Plan
	rowGroup  parquet.RowGroup
	columns   []columnSource
	remaining int64
	batchSize int
	closed    bool
}

func newRowGroupReader(plan *Plan, rowGroup parquet.RowGroup, batchSize int) (*RowGroupReader, error) {
	chunks := rowGroup.ColumnChunks()
	if err := validatePlan(plan, chunks); err != nil {
		return nil, err
	}
	r := &RowGroupReader{
		plan:      plan,
		rowGroup:  rowGroup,
		columns:   make([]columnSource, len(plan.Fields)),
		remaining: rowGroup.NumRows(),
		batchSize: batchSize,
	}
	for i := range plan.Fields {
		r.columns[i] = bindNode(plan.Fields[i].Node, chunks)
	}
	return r, nil
}

// NumRows returns the number of rows of the row group.
func (r *RowGroupReader) NumRows() int64 { return r.rowGroup.NumRows() }

// Read decodes the next rows of the row group into batch, returning the
// number of rows produced. It returns io.EOF when the row group is exhausted.
//
// On error the batch is left untouched; decode errors end the row group, they
// are returned again by every subsequent call.
func (r *RowGroupReader) Read(batch *Batch) (int, error) {
	if r.closed || r.remaining == 0 {
		return 0, io.EOF
	}
	n := r.batchSize
	if int64(n) > r.remaining {
		n = int(r.remaining)
	}
	for _, col := range r.columns {
		if err := col.prepare(n); err != nil {
			return 0, err
		}
	}
	batch.reshape(r.plan)
	for i, col := range r.columns {
		col.materialize(batch.columns[i], n)
	}
	batch.rows = n
	r.remaining -= int64(n)
	return n, nil
}

// Close releases the column readers. Close is idempotent; reading from a
// closed row group reader returns io.EOF.
func (r *RowGroupReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var lastErr error
	for _, col := range r.columns {
		if err := col.close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// validatePlan checks that the plan addresses columns the row group has, with
// the types the plan was resolved against.
func validatePlan(plan *Plan, chunks []parquet.ColumnChunk) error {
	return validatePlanFields(plan.Fields, chunks)
}

func validatePlanFields(fields []PlanField, chunks []parquet.ColumnChunk) error {
	for i := range fields {
		switch n := fields[i].Node.(type) {
		case *ReadLeaf:
			if err := validatePlanLeaf(n, chunks); err != nil {
				return err
			}
		case *ReadStruct:
			if n.presence != nil {
				if err := validatePlanLeaf(n.presence, chunks); err != nil {
					return err
				}
			}
			if err := validatePlanFields(n.Fields, chunks); err != nil {
				return err
			}
		}
	}
	return nil
}

func validatePlanLeaf(leaf *ReadLeaf, chunks []parquet.ColumnChunk) error {
	if leaf.Column < 0 || leaf.Column >= len(chunks) {
		return fmt.Errorf("icefile: plan does not match the row group: column %d of %q out of range", leaf.Column, columnPath(leaf.Path))
	}
	if kind := chunks[leaf.Column].Type().Kind(); kind != leaf.Source.Kind() {
		return fmt.Errorf("icefile: plan does not match the row group: column %q stores %s, planned as %s", columnPath(leaf.Path), kind, leaf.Source.Kind())
	}
	return nil
}
