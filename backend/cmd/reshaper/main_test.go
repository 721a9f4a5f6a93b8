package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/csvops"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

const planCSV = "Activity ID,Design,Build,Notes\nA1,2,0,x\nA2,,1.5,y\nA1,1,3,\n"

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvertWritesWorkbook(t *testing.T) {
	input := writeInput(t, "plan.csv", planCSV)
	output := filepath.Join(t.TempDir(), "out.xlsx")

	stdout, err := execute(t, "convert", "--input", input, "--id", "Activity ID", "--exclude", "Notes", "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 4 long records and 3 summary rows")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	names, err := sheetio.SheetNames(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Long Format", "Summary"}, names)

	long, err := sheetio.LoadFile(output, sheetio.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Activity ID", "Resource", "Mandays"}, long.Columns)
	assert.Equal(t, 4, long.NumRows())
}

func TestConvertJSONToStdout(t *testing.T) {
	input := writeInput(t, "plan.csv", planCSV)

	stdout, err := execute(t, "convert", "-i", input, "--id", "Activity ID", "-x", "Notes",
		"--no-summary", "--format", "json", "--output", "-")
	require.NoError(t, err)

	var res struct {
		Long  csvops.LongTable     `json:"long"`
		Pivot *csvops.SummaryTable `json:"pivot"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Len(t, res.Long.Records, 4)
	assert.Nil(t, res.Pivot)
}

func TestConvertErrors(t *testing.T) {
	input := writeInput(t, "plan.csv", planCSV)

	_, err := execute(t, "convert", "--input", input)
	assert.ErrorContains(t, err, `"id"`)

	_, err = execute(t, "convert", "--input", input, "--id", "Task", "--output", "-")
	var colErr *csvops.InvalidColumnError
	assert.True(t, errors.As(err, &colErr))

	_, err = execute(t, "convert", "--input", input, "--id", "Activity ID", "--sort", "random", "--output", "-")
	assert.ErrorContains(t, err, "unknown sort")

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "convert", "--input", input, "--id", "Activity ID")
	assert.ErrorContains(t, err, "does not exist")
}

func TestSummarize(t *testing.T) {
	input := writeInput(t, "long.csv", "Activity ID,Resource,Mandays\nB,QA,1\nA,QA,2\nB,QA,0.5\nA,Dev,\n")

	stdout, err := execute(t, "summarize", "--input", input, "--id", "Activity ID", "--sort", "identifier")
	require.NoError(t, err)

	var pivot csvops.SummaryTable
	require.NoError(t, json.Unmarshal([]byte(stdout), &pivot))
	require.Len(t, pivot.Records, 2)
	assert.Equal(t, types.Text("A"), pivot.Records[0].Identifier)
	assert.Equal(t, "2", pivot.Records[0].Total.String())
	assert.Equal(t, "1.5", pivot.Records[1].Total.String())
}

func TestSummarizeKeepsResolvedIdentifierHeader(t *testing.T) {
	input := writeInput(t, "long.csv", "Activity ID,Resource,Mandays\nA,QA,2\n")
	cfgPath := writeInput(t, "config.yaml", "reshape:\n  key_case_insensitive: true\n")

	stdout, err := execute(t, "--config", cfgPath, "summarize", "--input", input, "--id", "activity id")
	require.NoError(t, err)

	var pivot csvops.SummaryTable
	require.NoError(t, json.Unmarshal([]byte(stdout), &pivot))
	assert.Equal(t, "Activity ID", pivot.IdentifierColumn)
	require.Len(t, pivot.Records, 1)
	assert.Equal(t, "2", pivot.Records[0].Total.String())
}

func TestWriteOutputRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	err := writeOutput(nil, path, func(w io.Writer) error {
		_, _ = w.Write([]byte(`{"records": [`))
		return errors.New("disk full")
	})
	require.EqualError(t, err, "disk full")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestColumns(t *testing.T) {
	input := writeInput(t, "plan.csv", planCSV)

	stdout, err := execute(t, "columns", input, "--id", "Activity ID")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Columns (4):")
	assert.Contains(t, stdout, "4. Notes")
	assert.Contains(t, stdout, "Excludable: Design, Build, Notes")
	assert.Contains(t, stdout, "Preview (3 of 3 rows)")
}

func TestInspect(t *testing.T) {
	input := writeInput(t, "plan.csv", planCSV)

	stdout, err := execute(t, "inspect", input)
	require.NoError(t, err)
	jsonPath := input[:len(input)-len(".csv")] + ".json"
	assert.Contains(t, stdout, "Converted")

	ds, err := sheetio.LoadFile(jsonPath, sheetio.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Activity ID", "Design", "Build", "Notes"}, ds.Columns)
	assert.True(t, ds.Rows[0][1].IsNumber())
	assert.True(t, ds.Rows[1][1].IsNull())
}
