package csvops

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/utils"
)

const OperationResourceMelt = "resource_melt"

type ResourceMeltOptions struct {
	ReshapeOptions
	Summary     bool                `json:"summary"`                // also build the grouped summary
	SummarySort *SummarySortOptions `json:"summary_sort,omitempty"` // nil => first appearance
	Clean       *DataCleanOptions   `json:"clean,omitempty"`        // nil => no cleaning
}

type ResourceMeltTarget struct {
	IdentifierColumn string   `json:"identifier_column"` // e.g. "Activity ID"
	ExcludedColumns  []string `json:"excluded_columns"`  // dropped from the reshape; unknown names ignored
}

type ResourceMeltRequest struct {
	Operation string              `json:"operation"`
	Options   ResourceMeltOptions `json:"options"`
	Target    ResourceMeltTarget  `json:"target"`
	Dataset   types.Dataset       `json:"dataset"`
}

type ResourceMeltResponse struct {
	Operation string              `json:"operation"`
	Summary   types.ResultSummary `json:"summary"`
	Long      *LongTable          `json:"long"`
	Pivot     *SummaryTable       `json:"pivot"`
	Error     *string             `json:"error"`
}

// ResourceMelt runs clean (optional) -> reshape -> summarize (optional) on
// the request dataset. Summary.Matched counts long records and
// Summary.Missing the candidates dropped as null or zero.
func ResourceMelt(req ResourceMeltRequest) (ResourceMeltResponse, error) {
	var res ResourceMeltResponse
	res.Operation = req.Operation
	if res.Operation == "" {
		res.Operation = OperationResourceMelt
	}
	start := time.Now()

	// Validation
	if strings.TrimSpace(req.Target.IdentifierColumn) == "" {
		err := &InvalidColumnError{Role: "identifier", Column: req.Target.IdentifierColumn, Available: req.Dataset.Columns}
		return resMeltWithErr(res, err), err
	}
	if len(req.Dataset.Columns) == 0 {
		msg := "dataset required"
		res.Error = &msg
		return res, errors.New(msg)
	}

	ds := req.Dataset
	identifier, excluded := req.Target.IdentifierColumn, req.Target.ExcludedColumns
	if req.Options.Clean != nil {
		cleaned, _, err := CleanDataset(ds, *req.Options.Clean)
		if err != nil {
			return resMeltWithErr(res, err), err
		}
		if req.Options.Clean.Header {
			opts := req.Options.OpOptions
			identifier = renamedColumn(ds.Columns, cleaned.Columns, identifier, opts)
			renamed := make([]string, len(excluded))
			for i, name := range excluded {
				renamed[i] = renamedColumn(ds.Columns, cleaned.Columns, name, opts)
			}
			excluded = renamed
		}
		ds = cleaned
	}

	long, err := Reshape(ds, identifier, excluded, req.Options.ReshapeOptions)
	if err != nil {
		return resMeltWithErr(res, err), err
	}
	res.Long = &long

	if req.Options.Summary {
		pivot := Summarize(long, "")
		if req.Options.SummarySort != nil {
			pivot, err = SortSummary(pivot, *req.Options.SummarySort)
			if err != nil {
				return resMeltWithErr(res, err), err
			}
		}
		res.Pivot = &pivot
	}

	candidates := len(ds.Rows) * len(long.ResourceColumns)
	res.Summary = types.ResultSummary{
		Processed:  len(ds.Rows),
		Matched:    len(long.Records),
		Missing:    candidates - len(long.Records),
		DurationMS: time.Since(start).Milliseconds(),
	}
	res.Error = nil
	return res, nil
}

// --- helpers ---

// renamedColumn maps a name given against the raw header to the header
// CleanDataset produced at the same position. Names that do not resolve
// are returned unchanged so Reshape reports or ignores them as usual.
func renamedColumn(before, after []string, name string, opts types.OpOptions) string {
	idx, err := utils.ResolveKeyIndex(before, name, opts)
	if err != nil || idx >= len(after) {
		return name
	}
	return after[idx]
}

func resMeltWithErr(r ResourceMeltResponse, err error) ResourceMeltResponse {
	msg := err.Error()
	r.Error = &msg
	r.Long = nil
	r.Pivot = nil
	return r
}

// Decode helper if you receive raw JSON bytes
func DecodeResourceMeltRequest(data []byte) (ResourceMeltRequest, error) {
	var req ResourceMeltRequest
	err := json.Unmarshal(data, &req)
	return req, err
}
