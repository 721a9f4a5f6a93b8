package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/csvops"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

func newColumnsCmd(a *app) *cobra.Command {
	var (
		sheet      string
		identifier string
	)
	cmd := &cobra.Command{
		Use:   "columns <file>",
		Short: "List the columns of a sheet and preview its first rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := sheetio.LoadFile(args[0], sheetio.LoadOptions{Sheet: sheet})
			if err != nil {
				return err
			}
			a.logger.Debug("loaded input",
				zap.String("path", args[0]),
				zap.Int("columns", len(ds.Columns)),
				zap.Int("rows", ds.NumRows()),
			)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Columns (%d):\n", len(ds.Columns))
			for i, c := range ds.Columns {
				fmt.Fprintf(out, "  %d. %s\n", i+1, c)
			}
			if identifier != "" {
				options, defaults := csvops.ExclusionChoices(ds.Columns, identifier, a.cfg.ReshapeOptions().OpOptions)
				fmt.Fprintf(out, "Excludable: %s\n", strings.Join(options, ", "))
				fmt.Fprintf(out, "Excluded by default: %s\n", strings.Join(defaults, ", "))
			}
			fmt.Fprintf(out, "\nPreview (%d of %d rows):\n", min(sheetio.PreviewRows, ds.NumRows()), ds.NumRows())
			renderTable(out, sheetio.Preview(ds))
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name for xlsx input (default: first sheet)")
	cmd.Flags().StringVar(&identifier, "id", "", "Identifier column; also lists the excludable columns")
	return cmd
}

func renderTable(w io.Writer, ds types.Dataset) {
	tbl := ds.Table()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tbl.Header...).
		Rows(tbl.Rows...)
	fmt.Fprintln(w, t.String())
}
