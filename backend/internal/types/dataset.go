package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Dataset is an ordered set of uniquely named columns over rows of cells.
// Every row holds exactly len(Columns) cells.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// NewDataset normalizes the header (blank names become "Unnamed: <i>",
// repeated names get ".1", ".2" suffixes) and pads or widens rows so the
// table is rectangular. Input slices are copied.
func NewDataset(header []string, rows [][]Cell) Dataset {
	width := len(header)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	cols := make([]string, width)
	copy(cols, header)
	cols = normalizeHeader(cols)

	outRows := make([][]Cell, 0, len(rows))
	for _, r := range rows {
		row := make([]Cell, width)
		copy(row, r)
		outRows = append(outRows, row)
	}
	return Dataset{Columns: cols, Rows: outRows}
}

// UnmarshalJSON decodes {"columns": [...], "rows": [[...]]} and normalizes
// the result through NewDataset.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var raw struct {
		Columns []string `json:"columns"`
		Rows    [][]Cell `json:"rows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = NewDataset(raw.Columns, raw.Rows)
	return nil
}

func normalizeHeader(header []string) []string {
	used := make(map[string]bool, len(header))
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			used[h] = true
		}
	}
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		n, dup := seen[h]
		if !dup {
			seen[h] = 1
			used[h] = true
			out[i] = h
			continue
		}
		for k := n; ; k++ {
			cand := h + "." + strconv.Itoa(k)
			if !used[cand] {
				seen[h] = k + 1
				used[cand] = true
				out[i] = cand
				break
			}
		}
	}
	return out
}

// DatasetFromTable converts a string table into a Dataset, coercing each
// cell with ParseCell. Headerless tables get positional names "0", "1", ...
func DatasetFromTable(tbl TableData) Dataset {
	header := tbl.Header
	if !tbl.HasHeader {
		width := 0
		for _, r := range tbl.Rows {
			if len(r) > width {
				width = len(r)
			}
		}
		header = make([]string, width)
		for i := range header {
			header[i] = strconv.Itoa(i)
		}
	}
	rows := make([][]Cell, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		row := make([]Cell, len(r))
		for i, v := range r {
			row[i] = ParseCell(v)
		}
		rows = append(rows, row)
	}
	return NewDataset(header, rows)
}

// Table renders the dataset back to strings; null cells become "".
func (d Dataset) Table() TableData {
	rows := make([][]string, 0, len(d.Rows))
	for _, r := range d.Rows {
		row := make([]string, len(r))
		for i, c := range r {
			row[i] = c.String()
		}
		rows = append(rows, row)
	}
	return TableData{
		HasHeader: true,
		Header:    append([]string(nil), d.Columns...),
		Rows:      rows,
	}
}

func (d Dataset) NumRows() int { return len(d.Rows) }

// Head returns a copy holding at most the first n rows.
func (d Dataset) Head(n int) Dataset {
	if n < 0 || n > len(d.Rows) {
		n = len(d.Rows)
	}
	rows := make([][]Cell, 0, n)
	for _, r := range d.Rows[:n] {
		rows = append(rows, append([]Cell(nil), r...))
	}
	return Dataset{Columns: append([]string(nil), d.Columns...), Rows: rows}
}
