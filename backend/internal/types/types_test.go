package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		kind CellKind
		want string
	}{
		{raw: "", kind: KindNull},
		{raw: "   ", kind: KindNull},
		{raw: "NaN", kind: KindNull},
		{raw: "N/A", kind: KindNull},
		{raw: "0", kind: KindNumber, want: "0"},
		{raw: "2.50", kind: KindNumber, want: "2.5"},
		{raw: " -3 ", kind: KindNumber, want: "-3"},
		{raw: "1,024", kind: KindNumber, want: "1024"},
		{raw: "1,024.5", kind: KindNumber, want: "1024.5"},
		{raw: "1,2", kind: KindText, want: "1,2"},
		{raw: "Design", kind: KindText, want: "Design"},
		{raw: "Inf", kind: KindText, want: "Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := ParseCell(tt.raw)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestCellIsZero(t *testing.T) {
	assert.True(t, NumberFromInt(0).IsZero())
	assert.True(t, Number(decimal.RequireFromString("0.000")).IsZero())
	assert.False(t, Text("0").IsZero())
	assert.False(t, Null().IsZero())
	assert.False(t, NumberFromFloat(0.5).IsZero())
}

func TestCellKey(t *testing.T) {
	assert.Equal(t, NumberFromInt(2).Key(), Number(decimal.RequireFromString("2.00")).Key())
	assert.NotEqual(t, NumberFromInt(2).Key(), Text("2").Key())
	assert.NotEqual(t, Null().Key(), Text("").Key())
}

func TestCellJSON(t *testing.T) {
	var cells []Cell
	require.NoError(t, json.Unmarshal([]byte(`[null, 1.5, "0", true, 3]`), &cells))
	require.Len(t, cells, 5)
	assert.True(t, cells[0].IsNull())
	assert.Equal(t, "1.5", cells[1].Number.String())
	assert.Equal(t, Text("0"), cells[2])
	assert.Equal(t, Text("TRUE"), cells[3])
	assert.True(t, cells[4].Equal(NumberFromInt(3)))

	out, err := json.Marshal(cells)
	require.NoError(t, err)
	assert.JSONEq(t, `[null, 1.5, "0", "TRUE", 3]`, string(out))

	var bad Cell
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}

func TestNewDatasetHeader(t *testing.T) {
	ds := NewDataset(
		[]string{"ActivityID", "Design", "", "Design", "Design.1"},
		[][]Cell{{Text("A1")}},
	)
	assert.Equal(t, []string{"ActivityID", "Design", "Unnamed: 2", "Design.2", "Design.1"}, ds.Columns)
	require.Len(t, ds.Rows, 1)
	assert.Len(t, ds.Rows[0], 5)
	assert.True(t, ds.Rows[0][4].IsNull())
}

func TestNewDatasetWidensToLongestRow(t *testing.T) {
	ds := NewDataset([]string{"A"}, [][]Cell{{Text("x"), NumberFromInt(1)}})
	assert.Equal(t, []string{"A", "Unnamed: 1"}, ds.Columns)
}

func TestDatasetFromTable(t *testing.T) {
	ds := DatasetFromTable(TableData{
		HasHeader: true,
		Header:    []string{"ActivityID", "Design", "Build"},
		Rows: [][]string{
			{"A1", "2", ""},
			{"A2", "n/a"},
		},
	})
	require.Equal(t, 2, ds.NumRows())
	assert.Equal(t, Text("A1"), ds.Rows[0][0])
	assert.True(t, ds.Rows[0][1].Equal(NumberFromInt(2)))
	assert.True(t, ds.Rows[0][2].IsNull())
	assert.True(t, ds.Rows[1][1].IsNull())
	assert.True(t, ds.Rows[1][2].IsNull())

	headerless := DatasetFromTable(TableData{Rows: [][]string{{"a", "1"}}})
	assert.Equal(t, []string{"0", "1"}, headerless.Columns)
}

func TestDatasetTableAndHead(t *testing.T) {
	ds := NewDataset([]string{"A", "B"}, [][]Cell{
		{Text("x"), NumberFromInt(1)},
		{Text("y"), Null()},
		{Text("z"), NumberFromFloat(2.5)},
	})

	tbl := ds.Table()
	assert.True(t, tbl.HasHeader)
	assert.Equal(t, [][]string{{"x", "1"}, {"y", ""}, {"z", "2.5"}}, tbl.Rows)

	head := ds.Head(2)
	assert.Equal(t, 2, head.NumRows())
	head.Rows[0][0] = Text("changed")
	assert.Equal(t, Text("x"), ds.Rows[0][0])

	assert.Equal(t, 3, ds.Head(10).NumRows())
}
