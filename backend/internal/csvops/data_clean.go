package csvops

import (
	"strings"
	"unicode"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/utils"
)

// CaseMode controls case standardization
type CaseMode string

const (
	CaseNone  CaseMode = "none"
	CaseUpper CaseMode = "upper"
	CaseLower CaseMode = "lower"
	CaseTitle CaseMode = "title"
)

type DataCleanOptions struct {
	TrimSpaces      bool     `json:"trim_spaces"`       // trim leading/trailing whitespace
	CollapseInnerWS bool     `json:"collapse_inner_ws"` // collapse multiple internal whitespace to single space
	CaseMode        CaseMode `json:"case_mode"`         // none|upper|lower|title
	Columns         []string `json:"columns,omitempty"` // columns to apply; empty == all columns
	CaseInsensitive bool     `json:"case_insensitive"`  // used when resolving header names (not for converting)
	Header          bool     `json:"header"`            // also clean the header names (whitespace only)
}

// helper: collapse internal whitespace (convert runs of whitespace to single space)
func collapseInnerWhitespace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return b.String()
}

// helper: title case a string (simple wordwise Title Case)
func toTitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		first := unicode.ToUpper(runes[0])
		if len(runes) == 1 {
			words[i] = string(first)
		} else {
			words[i] = string(first) + strings.ToLower(string(runes[1:]))
		}
	}
	return strings.Join(words, " ")
}

func cleanWhitespace(s string, opts DataCleanOptions) string {
	if opts.TrimSpaces {
		s = strings.TrimSpace(s)
	}
	if opts.CollapseInnerWS {
		s = collapseInnerWhitespace(s)
	}
	return s
}

// applyTransforms cleans a single text cell. A cell trimmed down to nothing
// becomes null so it is filtered like any other absent value.
// returns (newCell, changed)
func applyTransforms(cell types.Cell, opts DataCleanOptions) (types.Cell, bool) {
	if cell.Kind != types.KindText {
		return cell, false
	}
	s := cleanWhitespace(cell.Text, opts)
	switch opts.CaseMode {
	case CaseUpper:
		s = strings.ToUpper(s)
	case CaseLower:
		s = strings.ToLower(s)
	case CaseTitle:
		s = toTitleCase(s)
	}
	if opts.TrimSpaces && s == "" {
		return types.Null(), true
	}
	return types.Text(s), s != cell.Text
}

// resolveColumnsToIndices returns the indices for the requested column names.
// If cols is empty, return all indices for the table.
func resolveColumnsToIndices(columns []string, cols []string, caseInsensitive bool) ([]int, error) {
	if len(cols) == 0 {
		indices := make([]int, 0, len(columns))
		for i := range columns {
			indices = append(indices, i)
		}
		return indices, nil
	}

	match := types.OpOptions{TrimSpaces: true, KeyCaseInsensitive: caseInsensitive}
	indices := make([]int, 0, len(cols))
	for _, c := range cols {
		idx, err := utils.ResolveKeyIndex(columns, c, match)
		if err != nil {
			return nil, &InvalidColumnError{Role: "clean", Column: c, Available: append([]string(nil), columns...)}
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

// CleanDataset returns a cleaned copy of ds and the number of cells (and
// header names) that changed. Numbers and nulls are never touched.
func CleanDataset(ds types.Dataset, opts DataCleanOptions) (types.Dataset, int, error) {
	if opts.CaseMode == "" {
		opts.CaseMode = CaseNone
	}
	indices, err := resolveColumnsToIndices(ds.Columns, opts.Columns, opts.CaseInsensitive)
	if err != nil {
		return types.Dataset{}, 0, err
	}

	modified := 0
	header := append([]string(nil), ds.Columns...)
	if opts.Header {
		for i, h := range header {
			if nh := cleanWhitespace(h, opts); nh != h {
				header[i] = nh
				modified++
			}
		}
	}

	// deep copy rows to avoid mutating input
	outRows := make([][]types.Cell, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		rowCopy := append([]types.Cell(nil), r...)
		for _, colIdx := range indices {
			if colIdx >= len(rowCopy) {
				continue
			}
			if newVal, changed := applyTransforms(rowCopy[colIdx], opts); changed {
				modified++
				rowCopy[colIdx] = newVal
			}
		}
		outRows = append(outRows, rowCopy)
	}

	// header cleaning can create blanks or duplicates; renormalize
	return types.NewDataset(header, outRows), modified, nil
}
