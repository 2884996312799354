// The cat command prints the rows of a data file, one per line, in the form
//
//	[1, {a: 2, b: NULL}]
//
// By default the file is read through its own schema, which dumps it as
// written. Passing --table resolves the file against a table schema instead,
// which shows the rows the way a reader of that table version sees them:
// renamed fields under their current names, dropped fields omitted, and
// fields newer than the file as NULL.
package main

import (
	"bufio"
	"io"
	"os"

	"github.com/segmentio/icefile"
	"github.com/segmentio/icefile/internal/debug"
)

type catFlags struct {
	_         struct{} `help:"Print the rows of a data file to stdout, one per line"`
	Debug     bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
	BatchSize int      `flag:"--batch-size" help:"Number of rows decoded per batch" default:"4096"`
	Limit     int      `flag:"--limit" help:"Stop after printing this many rows, -1 for all" default:"-1"`
	Offset    int64    `flag:"--offset" help:"Start of the byte range of row groups to scan" default:"0"`
	Length    int64    `flag:"--length" help:"Length of the byte range of row groups to scan, 0 for the whole file" default:"0"`
	Table     string   `flag:"--table" help:"Path to a JSON table schema to resolve the file against" default:"-"`
	Select    string   `flag:"--select" help:"Comma-separated dotted column paths to print, in order" default:"-"`
}

func catCommand(flags catFlags, path string) {
	debug.Toggle(flags.Debug)

	input, size, closeInput, err := openInput(path)
	if err != nil {
		perrorf("could not open file: %s", err)
		return
	}
	defer func() {
		if err := closeInput(); err != nil {
			perrorf("could not close file: %s", err)
		}
	}()

	reader, err := icefile.Open(input, size, icefile.BatchSize(flags.BatchSize))
	if err != nil {
		perrorf("could not read file: %s", err)
		return
	}

	root := reader.File().Root()
	scan := icefile.Scan{
		Projection: icefile.ProjectionOf(root),
		Table:      icefile.IdentityTableSchema(root),
	}
	if flags.Table != "" {
		if scan.Table, err = loadTableSchema(flags.Table); err != nil {
			perrorf("could not load table schema: %s", err)
			return
		}
		scan.Projection = tableProjection(scan.Table, root)
	}
	if flags.Select != "" {
		if scan.Projection, err = selectProjection(scan.Projection, flags.Select); err != nil {
			perrorf("invalid column selection: %s", err)
			return
		}
	}
	if flags.Length > 0 {
		scan.Range = &icefile.ScanRange{Offset: flags.Offset, Length: flags.Length}
	}

	if err := reader.Init(scan); err != nil {
		perrorf("could not resolve file: %s", err)
		return
	}
	defer reader.Close()
	pdebugf("scanning %d rows", reader.NumRows())

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	batch := new(icefile.Batch)
	printed := 0
	for {
		n, err := reader.Read(batch)
		if err == io.EOF {
			return
		}
		if err != nil {
			perrorf("error: %s", err)
			return
		}
		for i := 0; i < n; i++ {
			if flags.Limit >= 0 && printed == flags.Limit {
				return
			}
			_, _ = w.WriteString(batch.RowString(i))
			_ = w.WriteByte('\n')
			printed++
		}
	}
}
