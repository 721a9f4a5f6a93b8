// Package sheetio loads tabular uploads into datasets and writes result
// workbooks.
package sheetio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

// Format identifies an input encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// PreviewRows is how many rows a preview shows.
const PreviewRows = 5

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrEmptyInput        = errors.New("input has no header row")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrMalformedInput    = errors.New("malformed input")
)

// LoadOptions controls how an upload is decoded.
type LoadOptions struct {
	Format    Format // empty => detect from the file name
	Sheet     string // xlsx only; empty => first sheet
	Delimiter rune   // csv only; 0 => sniff among ',', ';', '\t'
}

// ParseFormat maps a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV, FormatJSON:
		return f, nil
	case "xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// DetectFormat picks the format from a file extension.
func DetectFormat(filename string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filename)
	}
	return ParseFormat(ext)
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string, opts LoadOptions) (types.Dataset, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return Load(f, filepath.Base(path), opts)
}

// Load decodes r into a dataset. The first non-empty row is the header.
func Load(r io.Reader, filename string, opts LoadOptions) (types.Dataset, error) {
	format := opts.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(filename); err != nil {
			return types.Dataset{}, err
		}
	}
	switch format {
	case FormatXLSX:
		return loadXLSX(r, opts.Sheet)
	case FormatCSV:
		return loadCSV(r, opts.Delimiter)
	case FormatJSON:
		return loadJSON(r)
	default:
		return types.Dataset{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Preview returns the first PreviewRows rows.
func Preview(ds types.Dataset) types.Dataset {
	return ds.Head(PreviewRows)
}

// SheetNames lists the sheets of an xlsx workbook in order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrMalformedInput, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func loadXLSX(r io.Reader, sheet string) (types.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("%w: open workbook: %w", ErrMalformedInput, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return types.Dataset{}, ErrEmptyInput
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return types.Dataset{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return types.Dataset{}, fmt.Errorf("%w: read sheet %q: %w", ErrMalformedInput, sheet, err)
	}

	start := firstNonEmpty(rows)
	if start < 0 {
		return types.Dataset{}, ErrEmptyInput
	}

	header := rows[start]
	body := make([][]types.Cell, 0, len(rows)-start-1)
	for r := start + 1; r < len(rows); r++ {
		row := make([]types.Cell, len(rows[r]))
		for c, raw := range rows[r] {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return types.Dataset{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				typ = excelize.CellTypeUnset
			}
			row[c] = xlsxCell(raw, typ)
		}
		body = append(body, row)
	}
	return types.NewDataset(header, body), nil
}

// xlsxCell keeps the workbook's own typing: only numeric cells become
// numbers, so a text "0" stays text.
func xlsxCell(raw string, typ excelize.CellType) types.Cell {
	if raw == "" {
		return types.Null()
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if d, err := decimal.NewFromString(raw); err == nil {
			return types.Number(d)
		}
		return types.Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return types.Text("TRUE")
		}
		return types.Text("FALSE")
	case excelize.CellTypeError:
		return types.Null()
	default:
		return types.Text(raw)
	}
}

func firstNonEmpty(rows [][]string) int {
	for i, r := range rows {
		for _, v := range r {
			if strings.TrimSpace(v) != "" {
				return i
			}
		}
	}
	return -1
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func loadCSV(r io.Reader, delim rune) (types.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if delim == 0 {
		delim = sniffDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return types.Dataset{}, fmt.Errorf("%w: read CSV: %w", ErrMalformedInput, err)
	}

	start := firstNonEmpty(rows)
	if start < 0 {
		return types.Dataset{}, ErrEmptyInput
	}
	return types.DatasetFromTable(types.TableData{
		HasHeader: true,
		Header:    rows[start],
		Rows:      rows[start+1:],
	}), nil
}

// sniffDelimiter picks the candidate that splits the first line the most.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// loadJSON accepts a Dataset document ({"columns", "rows"} with typed
// values) or a string table ({"hasHeader", "header", "rows"}).
func loadJSON(r io.Reader) (types.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("failed to read JSON: %w", err)
	}
	var probe struct {
		Columns   []string `json:"columns"`
		Header    []string `json:"header"`
		HasHeader *bool    `json:"hasHeader"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return types.Dataset{}, fmt.Errorf("%w: decode JSON: %w", ErrMalformedInput, err)
	}

	switch {
	case probe.Columns != nil:
		var ds types.Dataset
		if err := json.Unmarshal(data, &ds); err != nil {
			return types.Dataset{}, fmt.Errorf("%w: decode dataset: %w", ErrMalformedInput, err)
		}
		if len(ds.Columns) == 0 {
			return types.Dataset{}, ErrEmptyInput
		}
		return ds, nil
	case probe.Header != nil || probe.HasHeader != nil:
		var tbl types.TableData
		if err := json.Unmarshal(data, &tbl); err != nil {
			return types.Dataset{}, fmt.Errorf("%w: decode table: %w", ErrMalformedInput, err)
		}
		ds := types.DatasetFromTable(tbl)
		if len(ds.Columns) == 0 {
			return types.Dataset{}, ErrEmptyInput
		}
		return ds, nil
	default:
		return types.Dataset{}, fmt.Errorf("%w: expected \"columns\" or \"header\"", ErrMalformedInput)
	}
}
