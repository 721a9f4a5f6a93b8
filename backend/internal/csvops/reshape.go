package csvops

import (
	"fmt"
	"strings"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/utils"
)

const (
	DefaultResourceColumn = "Resource"
	DefaultAmountColumn   = "Mandays"
)

// InvalidColumnError reports a column name that is not in the dataset.
type InvalidColumnError struct {
	Role      string // identifier | resource | amount | clean
	Column    string
	Available []string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("%s column '%s' not found in dataset. available headers: [%s]",
		e.Role, e.Column, strings.Join(e.Available, ", "))
}

// NoResourceColumnsError is returned when nothing is left to unpivot.
type NoResourceColumnsError struct {
	IdentifierColumn string
	Excluded         []string
}

func (e *NoResourceColumnsError) Error() string {
	return fmt.Sprintf("no resource columns left after excluding identifier '%s' and [%s]",
		e.IdentifierColumn, strings.Join(e.Excluded, ", "))
}

// ReshapeOptions tunes column matching and the names of the output columns.
type ReshapeOptions struct {
	types.OpOptions
	ResourceColumn string `json:"resource_column,omitempty"`
	AmountColumn   string `json:"amount_column,omitempty"`
}

func (o ReshapeOptions) withDefaults() ReshapeOptions {
	if strings.TrimSpace(o.ResourceColumn) == "" {
		o.ResourceColumn = DefaultResourceColumn
	}
	if strings.TrimSpace(o.AmountColumn) == "" {
		o.AmountColumn = DefaultAmountColumn
	}
	return o
}

// LongRecord is one (identifier, resource, amount) triple.
type LongRecord struct {
	Identifier types.Cell `json:"identifier"`
	Resource   string     `json:"resource"`
	Amount     types.Cell `json:"amount"`
}

// LongTable is the unpivoted form of a dataset, in source row order then
// resource column order.
type LongTable struct {
	IdentifierColumn string       `json:"identifier_column"`
	ResourceColumn   string       `json:"resource_column"`
	AmountColumn     string       `json:"amount_column"`
	ResourceColumns  []string     `json:"resource_columns,omitempty"`
	Records          []LongRecord `json:"records"`
}

// Dataset lays the long table out as three columns for export.
func (t LongTable) Dataset() types.Dataset {
	rows := make([][]types.Cell, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, []types.Cell{r.Identifier, types.Text(r.Resource), r.Amount})
	}
	return types.NewDataset([]string{t.IdentifierColumn, t.ResourceColumn, t.AmountColumn}, rows)
}

// Reshape unpivots every column that is neither the identifier nor
// excluded into (identifier, resource, amount) records, dropping null and
// numeric-zero amounts. Excluded names that are not in the dataset are
// ignored. The dataset is not modified.
func Reshape(ds types.Dataset, identifierColumn string, excluded []string, opts ReshapeOptions) (LongTable, error) {
	opts = opts.withDefaults()

	idIdx, err := utils.ResolveKeyIndex(ds.Columns, identifierColumn, opts.OpOptions)
	if err != nil {
		return LongTable{}, &InvalidColumnError{
			Role:      "identifier",
			Column:    identifierColumn,
			Available: append([]string(nil), ds.Columns...),
		}
	}

	resIdx := resourceIndices(ds.Columns, idIdx, excluded, opts.OpOptions)
	if len(resIdx) == 0 {
		return LongTable{}, &NoResourceColumnsError{
			IdentifierColumn: ds.Columns[idIdx],
			Excluded:         append([]string(nil), excluded...),
		}
	}

	out := LongTable{
		IdentifierColumn: ds.Columns[idIdx],
		ResourceColumn:   opts.ResourceColumn,
		AmountColumn:     opts.AmountColumn,
		ResourceColumns:  make([]string, 0, len(resIdx)),
		Records:          make([]LongRecord, 0, len(ds.Rows)),
	}
	for _, i := range resIdx {
		out.ResourceColumns = append(out.ResourceColumns, ds.Columns[i])
	}

	for _, row := range ds.Rows {
		id := cellAt(row, idIdx)
		for _, ci := range resIdx {
			amount := cellAt(row, ci)
			if amount.IsNull() || amount.IsZero() {
				continue
			}
			out.Records = append(out.Records, LongRecord{
				Identifier: id,
				Resource:   ds.Columns[ci],
				Amount:     amount,
			})
		}
	}
	return out, nil
}

// resourceIndices returns, in header order, the columns left after removing
// the identifier and every excluded name that resolves.
func resourceIndices(columns []string, idIdx int, excluded []string, opts types.OpOptions) []int {
	drop := map[int]struct{}{idIdx: {}}
	for _, name := range excluded {
		if i, err := utils.ResolveKeyIndex(columns, name, opts); err == nil {
			drop[i] = struct{}{}
		}
	}
	indices := make([]int, 0, len(columns))
	for i := range columns {
		if _, ok := drop[i]; !ok {
			indices = append(indices, i)
		}
	}
	return indices
}

// cellAt treats positions past the end of a short row as null.
func cellAt(row []types.Cell, i int) types.Cell {
	if i < 0 || i >= len(row) {
		return types.Null()
	}
	return row[i]
}

// ExclusionChoices returns the columns an operator may exclude once the
// identifier is picked, and the preselected exclusions. The identifier is
// resolved the way Reshape resolves it and is never offered, so the
// preselection is empty.
func ExclusionChoices(columns []string, identifierColumn string, opts types.OpOptions) (options []string, defaults []string) {
	idIdx, err := utils.ResolveKeyIndex(columns, identifierColumn, opts)
	if err != nil {
		idIdx = -1
	}
	options = make([]string, 0, len(columns))
	for i, c := range columns {
		if i != idIdx {
			options = append(options, c)
		}
	}
	return options, []string{}
}
