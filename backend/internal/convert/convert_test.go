package convert

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/config"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/csvops"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/metrics"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

func plan() types.Dataset {
	return types.NewDataset(
		[]string{"Activity ID", "Design", "Build", "Notes"},
		[][]types.Cell{
			{types.Text("A1"), types.NumberFromInt(2), types.NumberFromInt(0), types.Text("x")},
			{types.Text("A1"), types.NumberFromInt(1), types.NumberFromInt(3), types.Null()},
			{types.Text("A2"), types.Null(), types.NumberFromFloat(1.5), types.Text("y")},
		},
	)
}

func TestRunWithSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := metrics.New("test")
	r := NewRunner(config.Default(), zap.New(core), m)

	res, err := r.Run("cli", plan(), r.DefaultJob("Activity ID", []string{"Notes"}))
	require.NoError(t, err)
	require.NotNil(t, res.Long)
	require.NotNil(t, res.Pivot)
	assert.Len(t, res.Long.Records, 4)
	assert.Len(t, res.Pivot.Records, 3)
	assert.Equal(t, 2, res.Summary.Missing)

	require.Equal(t, 1, logs.FilterMessage("reshape completed").Len())
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestRunFailureIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRunner(nil, zap.New(core), nil)

	_, err := r.Run("cli", plan(), Job{IdentifierColumn: "Nope"})
	var colErr *csvops.InvalidColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, 1, logs.FilterMessage("reshape failed").Len())
}

func TestWriteWorkbook(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	res, err := r.Run("cli", plan(), Job{IdentifierColumn: "Activity ID", ExcludedColumns: []string{"Notes"}})
	require.NoError(t, err)
	assert.Nil(t, res.Pivot)
	require.Len(t, r.Sheets(res), 1)

	res, err = r.Run("cli", plan(), r.DefaultJob("Activity ID", []string{"Notes"}))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.WriteWorkbook(&buf, res))
	names, err := sheetio.SheetNames(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Long Format", "Summary"}, names)
	assert.Equal(t, "resource_mandays_output.xlsx", r.Filename())
}
