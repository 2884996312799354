/*
Package icefile reads iceberg table data files stored as parquet.

Iceberg tables never rewrite their data files when the table schema evolves:
renaming, reordering, adding, or dropping columns only produces a new version
of the table schema, identified by permanent field ids. Reading a data file
therefore requires resolving the columns the caller projects against the
columns the file actually stores, by name against the table schema and by
field id against the file schema, and materializing the columns the file
predates as nulls.

Reading

The high-level interface for reading files is FileReader: open a file with
Open, declare the projected columns with Init, then call Read to fill column
batches until io.EOF.

	reader, err := icefile.Open(file, size)
	...
	err = reader.Init(icefile.Scan{
		Projection: icefile.ProjectionOf(parquet.SchemaOf(new(RowType))),
	})
	...
	batch := new(icefile.Batch)
	for {
		n, err := reader.Read(batch)
		if err != nil {
			break
		}
		...
	}

Resolution is also usable on its own through Resolve, which produces the
column materialization plan of a projection without reading any data.

Tooling

This package additionally provides tooling to inspect data files, their table
schemas, and their resolution plans. The program is available at
./cmd/icetools.
*/
package icefile
