package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/convert"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/csvops"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

const sourceCLI = "cli"

func newConvertCmd(a *app) *cobra.Command {
	var (
		input      string
		sheet      string
		identifier string
		excluded   []string
		noSummary  bool
		sortMode   string
		sortOrder  string
		trim       bool
		output     string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Unpivot a wide sheet into long format and write a workbook",
		Example: `  reshaper convert --input plan.xlsx --id "Activity ID" --exclude Notes
  reshaper convert --input plan.csv --id "Activity ID" --format json --output -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sheetio.LoadFile(input, sheetio.LoadOptions{Sheet: sheet})
			if err != nil {
				return err
			}

			runner := convert.NewRunner(a.cfg, a.logger, nil)
			job := runner.DefaultJob(identifier, excluded)
			if noSummary {
				job.Summary = false
			}
			if sortMode != "" {
				job.SummarySort, err = summarySort(sortMode, sortOrder)
				if err != nil {
					return err
				}
			}
			if trim {
				job.Clean = &csvops.DataCleanOptions{TrimSpaces: true, CollapseInnerWS: true, Header: true}
			}

			res, err := runner.Run(sourceCLI, ds, job)
			if err != nil {
				return err
			}

			if output == "" {
				output = runner.Filename()
				if format == "json" {
					output = strings.TrimSuffix(output, filepath.Ext(output)) + ".json"
				}
			}
			if err := writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				switch format {
				case "xlsx":
					return runner.WriteWorkbook(w, res)
				case "json":
					return writeJSON(w, res)
				default:
					return fmt.Errorf("unsupported output format %q", format)
				}
			}); err != nil {
				return err
			}

			if output != "-" {
				summaryRows := 0
				if res.Pivot != nil {
					summaryRows = len(res.Pivot.Records)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d long records and %d summary rows to %s\n",
					len(res.Long.Records), summaryRows, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (.xlsx, .csv, .json)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name for xlsx input (default: first sheet)")
	cmd.Flags().StringVar(&identifier, "id", "", "Identifier column")
	cmd.Flags().StringSliceVarP(&excluded, "exclude", "x", nil, "Columns to leave out of the reshape")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Skip the summary sheet")
	cmd.Flags().StringVar(&sortMode, "sort", "", "Summary order: first_seen or identifier (default from config)")
	cmd.Flags().StringVar(&sortOrder, "order", "asc", "Summary sort direction: asc or desc")
	cmd.Flags().BoolVar(&trim, "trim", false, "Trim and collapse whitespace in text cells and headers first")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, or - for stdout (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Output format: xlsx or json")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newSummarizeCmd(a *app) *cobra.Command {
	var (
		input          string
		sheet          string
		identifier     string
		resourceColumn string
		amountColumn   string
		sortMode       string
		sortOrder      string
		output         string
	)
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Total the amounts of an existing long-format table per identifier and resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sheetio.LoadFile(input, sheetio.LoadOptions{Sheet: sheet})
			if err != nil {
				return err
			}
			if resourceColumn == "" {
				resourceColumn = a.cfg.Reshape.ResourceColumn
			}
			if amountColumn == "" {
				amountColumn = a.cfg.Reshape.AmountColumn
			}

			long, err := csvops.LongTableFromDataset(ds, identifier, resourceColumn, amountColumn, a.cfg.ReshapeOptions().OpOptions)
			if err != nil {
				return err
			}
			pivot := csvops.Summarize(long, "")
			opts := a.cfg.SummarySort()
			if sortMode != "" {
				if opts, err = summarySort(sortMode, sortOrder); err != nil {
					return err
				}
			}
			if opts != nil {
				if pivot, err = csvops.SortSummary(pivot, *opts); err != nil {
					return err
				}
			}

			if output == "" {
				output = "-"
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				if strings.EqualFold(filepath.Ext(output), ".xlsx") {
					return sheetio.WriteWorkbook(w, types.NamedDataset{Name: a.cfg.Export.SummarySheet, Dataset: pivot.Dataset()})
				}
				return writeJSON(w, pivot)
			})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Long-format input file")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name for xlsx input (default: first sheet)")
	cmd.Flags().StringVar(&identifier, "id", "", "Identifier column")
	cmd.Flags().StringVar(&resourceColumn, "resource-column", "", "Resource column name (default from config)")
	cmd.Flags().StringVar(&amountColumn, "amount-column", "", "Amount column name (default from config)")
	cmd.Flags().StringVar(&sortMode, "sort", "", "Summary order: first_seen or identifier (default from config)")
	cmd.Flags().StringVar(&sortOrder, "order", "asc", "Summary sort direction: asc or desc")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output path (.xlsx or .json), or - for JSON on stdout")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func summarySort(mode, order string) (*csvops.SummarySortOptions, error) {
	switch csvops.SortMode(mode) {
	case csvops.SortFirstSeen:
		return nil, nil
	case csvops.SortIdentifier:
		return &csvops.SummarySortOptions{Mode: csvops.SortIdentifier, Order: csvops.SortOrder(order)}, nil
	default:
		return nil, fmt.Errorf("unknown sort %q: want first_seen or identifier", mode)
	}
}

// writeOutput sends write to stdout for "-" and to a created file otherwise.
// A failed write removes the partial file.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(stdout)
	}
	path = filepath.Clean(path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
