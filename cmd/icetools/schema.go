package main

import (
	"fmt"

	"github.com/segmentio/icefile"
	"github.com/segmentio/icefile/internal/debug"
)

type schemaFlags struct {
	_     struct{} `help:"Print the table schema and the file schema of a data file"`
	Debug bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
}

func schemaCommand(flags schemaFlags, path string) {
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

	reader, err := icefile.Open(input, size)
	if err != nil {
		perrorf("could not read file: %s", err)
		return
	}

	f := reader.File()
	table, ok, err := icefile.FileTableSchema(f)
	if err != nil {
		perrorf("invalid table schema in file metadata: %s", err)
		return
	}
	if !ok {
		pdebugf("no table schema in file metadata, deriving one from the file schema")
		table = icefile.IdentityTableSchema(f.Root())
	}

	fmt.Println(table)
	fmt.Println()
	fmt.Println(f.Schema())
}
