package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
)

// newInspectCmd converts any supported input into the typed JSON dataset
// form that /api/v1/reshape accepts.
func newInspectCmd(a *app) *cobra.Command {
	var (
		sheet  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Convert a sheet to a typed JSON dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			ds, err := sheetio.LoadFile(input, sheetio.LoadOptions{Sheet: sheet})
			if err != nil {
				return fmt.Errorf("error converting %s: %w", input, err)
			}

			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
				if output == input {
					output = input + ".out.json"
				}
			}
			if err := writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return writeJSON(w, ds)
			}); err != nil {
				return err
			}
			a.logger.Debug("dataset written", zap.String("input", input), zap.String("output", output))
			if output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s\n", input, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name for xlsx input (default: first sheet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, or - for stdout (default: input with .json)")
	return cmd
}
