package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/segmentio/icefile"
	"github.com/segmentio/icefile/internal/debug"
)

type planFlags struct {
	_      struct{} `help:"Resolve and print the column materialization plan of a data file"`
	Debug  bool     `flag:"--debug" help:"Display debugging logs" default:"false"`
	Table  string   `flag:"--table" help:"Path to a JSON table schema overriding the one embedded in the file" default:"-"`
	Select string   `flag:"--select" help:"Comma-separated dotted column paths to plan, in order" default:"-"`
}

func planCommand(flags planFlags, path string) {
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

	root := reader.File().Root()
	scan := icefile.Scan{Projection: icefile.ProjectionOf(root)}
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

	if err := reader.Init(scan); err != nil {
		perrorf("could not resolve plan: %s", err)
		return
	}
	defer reader.Close()

	if err := icefile.PrintPlan(os.Stdout, reader.Plan()); err != nil {
		perrorf("error: %s", err)
		return
	}
	fmt.Println()
	fmt.Println()
	printPlanColumns(os.Stdout, reader.Plan())
}

// printPlanColumns summarizes the physical columns the plan reads.
func printPlanColumns(w io.Writer, plan *icefile.Plan) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Path", "Source", "Target"})
	walkPlanLeaves(plan.Fields, func(leaf *icefile.ReadLeaf) {
		table.Append([]string{
			strconv.Itoa(leaf.Column),
			strings.Join(leaf.Path, "."),
			leaf.Source.String(),
			leaf.Target.String(),
		})
	})
	table.Render()
}

func walkPlanLeaves(fields []icefile.PlanField, do func(*icefile.ReadLeaf)) {
	for i := range fields {
		switch n := fields[i].Node.(type) {
		case *icefile.ReadLeaf:
			do(n)
		case *icefile.ReadStruct:
			walkPlanLeaves(n.Fields, do)
		}
	}
}
