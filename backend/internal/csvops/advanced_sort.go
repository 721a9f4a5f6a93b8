package csvops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

// --- Sort modes / options ---

type SortMode string
type SortOrder string

const (
	SortFirstSeen  SortMode = "first_seen" // keep Summarize's first-appearance order
	SortIdentifier SortMode = "identifier" // identifier, then resource

	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

type SummarySortOptions struct {
	Mode            SortMode  `json:"mode"`             // first_seen | identifier
	Order           SortOrder `json:"order"`            // asc | desc
	CaseInsensitive bool      `json:"case_insensitive"` // for text identifiers and resource names
}

// kindRank puts numbers before text before null in ascending order.
func kindRank(c types.Cell) int {
	switch c.Kind {
	case types.KindNumber:
		return 0
	case types.KindText:
		return 1
	default:
		return 2
	}
}

func compareText(a, b string, caseInsensitive bool) int {
	if caseInsensitive {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}
	return strings.Compare(a, b)
}

func compareCells(a, b types.Cell, caseInsensitive bool) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case types.KindNumber:
		return a.Number.Cmp(b.Number)
	case types.KindText:
		return compareText(a.Text, b.Text, caseInsensitive)
	default:
		return 0
	}
}

// SortSummary returns a copy of the summary ordered per opts. Ties keep
// their first-appearance order.
func SortSummary(tbl SummaryTable, opts SummarySortOptions) (SummaryTable, error) {
	if opts.Mode == "" {
		opts.Mode = SortFirstSeen
	}
	if opts.Order == "" {
		opts.Order = OrderAsc
	}
	if opts.Order != OrderAsc && opts.Order != OrderDesc {
		return SummaryTable{}, fmt.Errorf("unsupported sort order: %s", opts.Order)
	}

	out := tbl
	out.Records = append([]SummaryRecord(nil), tbl.Records...)

	switch opts.Mode {
	case SortFirstSeen:
		return out, nil
	case SortIdentifier:
	default:
		return SummaryTable{}, fmt.Errorf("unsupported sort mode: %s", opts.Mode)
	}

	asc := opts.Order == OrderAsc
	sort.SliceStable(out.Records, func(i, j int) bool {
		a := out.Records[i]
		b := out.Records[j]
		c := compareCells(a.Identifier, b.Identifier, opts.CaseInsensitive)
		if c == 0 {
			c = compareText(a.Resource, b.Resource, opts.CaseInsensitive)
		}
		if c == 0 {
			// stable tie-breaker: preserve original order (SliceStable handles)
			return false
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
	return out, nil
}
