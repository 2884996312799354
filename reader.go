package icefile

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/segmentio/icefile/internal/debug"
)

// A FileReader reads batches of rows from one data file, resolving the file
// schema against a table schema so that files written under older versions of
// the table still produce the projected columns.
//
// This example showcases a typical use of file readers:
//
//	reader, err := icefile.Open(file, size)
//	if err != nil {
//		...
//	}
//	defer reader.Close()
//	if err := reader.Init(icefile.Scan{Projection: projection}); err != nil {
//		...
//	}
//	batch := new(icefile.Batch)
//	for {
//		n, err := reader.Read(batch)
//		if err != nil {
//			if err == io.EOF {
//				break
//			}
//			...
//		}
//		for i := 0; i < n; i++ {
//			... batch.RowString(i) ...
//		}
//	}
type FileReader struct {
	file    *parquet.File
	config  *ReaderConfig
	plan    *Plan
	groups  []*RowGroupReader
	current int
}

// Open opens a data file of the given size read from input.
//
// If input is already a *parquet.File it is used directly and size is
// ignored; otherwise the file footer is decoded from input. A size of zero or
// less is derived from input when it has a `Size() int64` method or
// implements io.Seeker.
//
// Opening decodes footer metadata only. No columns are touched until the
// reader is initialized with a scan.
func Open(input io.ReaderAt, size int64, options ...ReaderOption) (*FileReader, error) {
	config, err := NewReaderConfig(options...)
	if err != nil {
		return nil, err
	}
	f, _ := input.(*parquet.File)
	if f == nil {
		if size <= 0 {
			if size, err = sizeOf(input); err != nil {
				return nil, fmt.Errorf("icefile: opening file: %w", err)
			}
		}
		if f, err = parquet.OpenFile(input, size); err != nil {
			return nil, fmt.Errorf("icefile: opening file: %w", err)
		}
	}
	return &FileReader{file: f, config: config}, nil
}

func sizeOf(r io.ReaderAt) (int64, error) {
	switch f := r.(type) {
	case interface{ Size() int64 }:
		return f.Size(), nil
	case io.Seeker:
		off, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		end, err := f.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		_, err = f.Seek(off, io.SeekStart)
		return end, err
	default:
		return 0, fmt.Errorf("cannot determine length of %T", r)
	}
}

// A Scan describes what a file reader produces: the columns to materialize,
// the table schema translating projected names into the field ids recorded in
// the file, and optionally the byte range of the file to read.
type Scan struct {
	// The columns to produce, resolved independently of how the file stores
	// them.
	Projection Projection

	// The table schema the projection names refer to. When nil, the schema
	// embedded in the file footer under MetadataSchemaKey is used, and files
	// carrying none are read through the identity schema derived from their
	// own file schema.
	Table *TableSchema

	// When non-nil, restricts the scan to the row groups whose starting
	// offset falls within the range. When nil, every row group is read.
	Range *ScanRange
}

// ScanRange designates the row groups of a file by a byte range: a row group
// qualifies when its starting offset o satisfies Offset <= o < Offset+Length.
// Row groups are never split; a reader given the range covering the start of
// a row group produces all of its rows. Splitting a file into consecutive
// ranges therefore assigns every row group to exactly one reader.
type ScanRange struct {
	Offset int64
	Length int64
}

func (r *ScanRange) contains(offset int64) bool {
	return offset >= r.Offset && offset < r.Offset+r.Length
}

// Init resolves the scan against the file and prepares the row group readers.
//
// Init returns a *ResolutionError when a projected column exists in the file
// with an incompatible type, and an error wrapping ErrMalformedSchema when
// the file schema is internally inconsistent. Initialization may be retried
// after an error; it panics when called again after it succeeded.
func (r *FileReader) Init(scan Scan) error {
	if r.plan != nil {
		panic("icefile: Init called twice")
	}

	table := scan.Table
	if table == nil {
		fileTable, ok, err := FileTableSchema(r.file)
		if err != nil {
			return err
		}
		if ok {
			table = fileTable
		} else {
			table = IdentityTableSchema(r.file.Root())
		}
	}

	plan, err := Resolve(scan.Projection, table, r.file.Root())
	if err != nil {
		return err
	}

	rowGroups := r.file.RowGroups()
	metadata := r.file.Metadata()
	groups := make([]*RowGroupReader, 0, len(rowGroups))
	for i, rowGroup := range rowGroups {
		if scan.Range != nil && !scan.Range.contains(rowGroupOffset(&metadata.RowGroups[i])) {
			continue
		}
		group, err := newRowGroupReader(plan, rowGroup, r.config.BatchSize)
		if err != nil {
			for _, g := range groups {
				g.Close()
			}
			return err
		}
		groups = append(groups, group)
	}

	debug.Format("scan of %d/%d row groups, %d columns", len(groups), len(rowGroups), len(plan.Fields))
	r.plan = plan
	r.groups = groups
	r.current = 0
	return nil
}

// rowGroupOffset returns the offset of the first byte of a row group. Files
// predating the file_offset field fall back to the position of the first
// page of the first column.
func rowGroupOffset(rowGroup *format.RowGroup) int64 {
	if rowGroup.FileOffset > 0 {
		return rowGroup.FileOffset
	}
	if len(rowGroup.Columns) > 0 {
		meta := &rowGroup.Columns[0].MetaData
		if meta.DictionaryPageOffset > 0 {
			return meta.DictionaryPageOffset
		}
		return meta.DataPageOffset
	}
	return 0
}

// Read produces the next batch of rows, returning the number of rows added to
// batch. Row groups are read in position order, each exhausted before the
// next one starts. The method returns io.EOF after the last selected row
// group.
//
// The batch is reshaped on first use and reused afterwards; its contents are
// valid until the next call to Read with the same batch.
func (r *FileReader) Read(batch *Batch) (int, error) {
	if r.plan == nil {
		panic("icefile: Read called before Init")
	}
	for r.current < len(r.groups) {
		n, err := r.groups[r.current].Read(batch)
		if err == io.EOF {
			if err := r.groups[r.current].Close(); err != nil {
				return 0, err
			}
			r.current++
			continue
		}
		return n, err
	}
	return 0, io.EOF
}

// RowGroups returns the row group readers selected by the scan, in position
// order. The readers are independent of one another and may be driven
// concurrently, each from its own goroutine; programs doing so must not also
// call Read on r, which drains the same readers.
func (r *FileReader) RowGroups() []*RowGroupReader {
	if r.plan == nil {
		panic("icefile: RowGroups called before Init")
	}
	return r.groups
}

// Plan returns the materialization plan resolved by Init, or nil before
// initialization.
func (r *FileReader) Plan() *Plan { return r.plan }

// File returns the underlying file.
func (r *FileReader) File() *parquet.File { return r.file }

// NumRows returns the total number of rows of the row groups selected by the
// scan.
func (r *FileReader) NumRows() int64 {
	numRows := int64(0)
	for _, g := range r.groups {
		numRows += g.NumRows()
	}
	return numRows
}

// Close closes the row group readers. Reading from a closed reader returns
// io.EOF.
func (r *FileReader) Close() error {
	var lastErr error
	for _, g := range r.groups {
		if err := g.Close(); err != nil {
			lastErr = err
		}
	}
	r.current = len(r.groups)
	return lastErr
}

// BatchReader is the interface implemented by types producing batches of
// rows.
type BatchReader interface {
	Read(batch *Batch) (int, error)
}

var (
	_ BatchReader = (*FileReader)(nil)
	_ BatchReader = (*RowGroupReader)(nil)
)
