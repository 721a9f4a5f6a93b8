package csvops

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/utils"
)

// SummaryRecord totals the amounts of one (identifier, resource) pair.
type SummaryRecord struct {
	Identifier types.Cell      `json:"identifier"`
	Resource   string          `json:"resource"`
	Total      decimal.Decimal `json:"total"`
}

func (r SummaryRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Identifier types.Cell `json:"identifier"`
		Resource   string     `json:"resource"`
		Total      types.Cell `json:"total"`
	}{r.Identifier, r.Resource, types.Number(r.Total)})
}

// SummaryTable is the grouped form of a LongTable.
type SummaryTable struct {
	IdentifierColumn string          `json:"identifier_column"`
	ResourceColumn   string          `json:"resource_column"`
	AmountColumn     string          `json:"amount_column"`
	Records          []SummaryRecord `json:"records"`
}

func (t SummaryTable) Dataset() types.Dataset {
	rows := make([][]types.Cell, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, []types.Cell{r.Identifier, types.Text(r.Resource), types.Number(r.Total)})
	}
	return types.NewDataset([]string{t.IdentifierColumn, t.ResourceColumn, t.AmountColumn}, rows)
}

type groupKey struct {
	identifier string
	resource   string
}

// Summarize groups long records by (identifier, resource) and sums their
// numeric amounts. Groups come out in first-appearance order. Text amounts
// add nothing to a total but still produce their group. An empty identifier
// column name keeps the long table's.
func Summarize(long LongTable, identifierColumn string) SummaryTable {
	if identifierColumn == "" {
		identifierColumn = long.IdentifierColumn
	}
	out := SummaryTable{
		IdentifierColumn: identifierColumn,
		ResourceColumn:   long.ResourceColumn,
		AmountColumn:     long.AmountColumn,
		Records:          []SummaryRecord{},
	}

	index := make(map[groupKey]int, len(long.Records))
	for _, r := range long.Records {
		k := groupKey{identifier: r.Identifier.Key(), resource: r.Resource}
		i, ok := index[k]
		if !ok {
			i = len(out.Records)
			index[k] = i
			out.Records = append(out.Records, SummaryRecord{
				Identifier: r.Identifier,
				Resource:   r.Resource,
				Total:      decimal.Zero,
			})
		}
		if r.Amount.IsNumber() {
			out.Records[i].Total = out.Records[i].Total.Add(r.Amount.Number)
		}
	}
	return out
}

// LongTableFromDataset reads an already long-format dataset (for example a
// previously exported "Long Format" sheet) so it can be summarized. Rows
// with a null or zero amount are dropped, as Reshape would.
func LongTableFromDataset(ds types.Dataset, identifierColumn, resourceColumn, amountColumn string, opts types.OpOptions) (LongTable, error) {
	if resourceColumn == "" {
		resourceColumn = DefaultResourceColumn
	}
	if amountColumn == "" {
		amountColumn = DefaultAmountColumn
	}

	resolve := func(role, name string) (int, error) {
		i, err := utils.ResolveKeyIndex(ds.Columns, name, opts)
		if err != nil {
			return -1, &InvalidColumnError{Role: role, Column: name, Available: append([]string(nil), ds.Columns...)}
		}
		return i, nil
	}
	idIdx, err := resolve("identifier", identifierColumn)
	if err != nil {
		return LongTable{}, err
	}
	resIdx, err := resolve("resource", resourceColumn)
	if err != nil {
		return LongTable{}, err
	}
	amtIdx, err := resolve("amount", amountColumn)
	if err != nil {
		return LongTable{}, err
	}

	out := LongTable{
		IdentifierColumn: ds.Columns[idIdx],
		ResourceColumn:   ds.Columns[resIdx],
		AmountColumn:     ds.Columns[amtIdx],
		Records:          make([]LongRecord, 0, len(ds.Rows)),
	}
	for _, row := range ds.Rows {
		amount := cellAt(row, amtIdx)
		if amount.IsNull() || amount.IsZero() {
			continue
		}
		out.Records = append(out.Records, LongRecord{
			Identifier: cellAt(row, idIdx),
			Resource:   cellAt(row, resIdx).String(),
			Amount:     amount,
		})
	}
	return out, nil
}
