package csvops

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

const meltRequestJSON = `{
  "operation": "resource_melt",
  "options": {"summary": true, "summary_sort": {"mode": "identifier", "order": "desc"}},
  "target": {"identifier_column": "ActivityID", "excluded_columns": ["Phase"]},
  "dataset": {
    "columns": ["ActivityID", "Phase", "Design", "Build"],
    "rows": [
      ["A1", "P1", 2, 0],
      ["A1", "P1", 0, 3],
      ["A2", "P2", 5, null],
      ["A1", "P1", 1, "0"]
    ]
  }
}`

func TestResourceMelt(t *testing.T) {
	req, err := DecodeResourceMeltRequest([]byte(meltRequestJSON))
	require.NoError(t, err)

	res, err := ResourceMelt(req)
	require.NoError(t, err)
	assert.Nil(t, res.Error)
	assert.Equal(t, "resource_melt", res.Operation)

	require.NotNil(t, res.Long)
	assert.Equal(t, []triple{
		{"A1", "Design", "2"},
		{"A1", "Build", "3"},
		{"A2", "Design", "5"},
		{"A1", "Design", "1"},
		{"A1", "Build", "0"},
	}, longTriples(*res.Long))

	require.NotNil(t, res.Pivot)
	assert.Equal(t, []triple{
		{"A2", "Design", "5"},
		{"A1", "Design", "3"},
		{"A1", "Build", "3"},
	}, summaryTriples(*res.Pivot))

	assert.Equal(t, 4, res.Summary.Processed)
	assert.Equal(t, 5, res.Summary.Matched)
	assert.Equal(t, 3, res.Summary.Missing)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"identifier_column":"ActivityID"`)
	assert.Contains(t, string(out), `"total":5`)
}

func TestResourceMeltWithoutSummary(t *testing.T) {
	req, err := DecodeResourceMeltRequest([]byte(meltRequestJSON))
	require.NoError(t, err)
	req.Options.Summary = false
	req.Operation = ""

	res, err := ResourceMelt(req)
	require.NoError(t, err)
	assert.Equal(t, OperationResourceMelt, res.Operation)
	assert.NotNil(t, res.Long)
	assert.Nil(t, res.Pivot)
}

func TestResourceMeltCleanHeaderKeepsRawNames(t *testing.T) {
	req := ResourceMeltRequest{
		Options: ResourceMeltOptions{
			Clean: &DataCleanOptions{TrimSpaces: true, CollapseInnerWS: true, Header: true},
		},
		Target: ResourceMeltTarget{IdentifierColumn: "Activity  ID ", ExcludedColumns: []string{"Notes "}},
		Dataset: types.NewDataset(
			[]string{"Activity  ID ", "Notes ", "Design"},
			[][]types.Cell{{txt("A1"), txt("late"), num(2)}},
		),
	}

	res, err := ResourceMelt(req)
	require.NoError(t, err)
	require.NotNil(t, res.Long)
	assert.Equal(t, "Activity ID", res.Long.IdentifierColumn)
	assert.Equal(t, []string{"Design"}, res.Long.ResourceColumns)
	assert.Equal(t, []triple{{"A1", "Design", "2"}}, longTriples(*res.Long))

	// names already in their cleaned form still resolve
	req.Target = ResourceMeltTarget{IdentifierColumn: "Activity ID", ExcludedColumns: []string{"Notes"}}
	res, err = ResourceMelt(req)
	require.NoError(t, err)
	assert.Equal(t, []triple{{"A1", "Design", "2"}}, longTriples(*res.Long))
}

func TestResourceMeltErrors(t *testing.T) {
	req, err := DecodeResourceMeltRequest([]byte(meltRequestJSON))
	require.NoError(t, err)

	req.Target.IdentifierColumn = "Nonexistent"
	res, err := ResourceMelt(req)
	var colErr *InvalidColumnError
	require.True(t, errors.As(err, &colErr))
	require.NotNil(t, res.Error)
	assert.Nil(t, res.Long)

	req.Target.IdentifierColumn = " "
	_, err = ResourceMelt(req)
	assert.True(t, errors.As(err, &colErr))

	req.Target.IdentifierColumn = "ActivityID"
	req.Target.ExcludedColumns = []string{"Phase", "Design", "Build"}
	res, err = ResourceMelt(req)
	var noRes *NoResourceColumnsError
	require.True(t, errors.As(err, &noRes))
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "no resource columns")
}
