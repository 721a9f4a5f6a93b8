// Package convert runs a resource melt end to end: decoded dataset in,
// long table, optional summary and workbook out. The CLI and the HTTP
// server both go through Runner so they log and count runs the same way.
package convert

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/config"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/csvops"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/metrics"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

// Job is one conversion request.
type Job struct {
	IdentifierColumn string
	ExcludedColumns  []string
	Summary          bool
	SummarySort      *csvops.SummarySortOptions
	Clean            *csvops.DataCleanOptions
}

type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewRunner accepts a nil logger or nil metrics.
func NewRunner(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger, metrics: m}
}

// DefaultJob fills the summary settings from configuration.
func (r *Runner) DefaultJob(identifier string, excluded []string) Job {
	return Job{
		IdentifierColumn: identifier,
		ExcludedColumns:  excluded,
		Summary:          r.cfg.Reshape.Summary,
		SummarySort:      r.cfg.SummarySort(),
	}
}

// Run reshapes ds. source labels the run in logs and metrics.
func (r *Runner) Run(source string, ds types.Dataset, job Job) (csvops.ResourceMeltResponse, error) {
	req := csvops.ResourceMeltRequest{
		Operation: csvops.OperationResourceMelt,
		Options: csvops.ResourceMeltOptions{
			ReshapeOptions: r.cfg.ReshapeOptions(),
			Summary:        job.Summary,
			SummarySort:    job.SummarySort,
			Clean:          job.Clean,
		},
		Target: csvops.ResourceMeltTarget{
			IdentifierColumn: job.IdentifierColumn,
			ExcludedColumns:  job.ExcludedColumns,
		},
		Dataset: ds,
	}
	return r.Execute(source, req)
}

// Execute runs a fully specified request.
func (r *Runner) Execute(source string, req csvops.ResourceMeltRequest) (csvops.ResourceMeltResponse, error) {
	start := time.Now()
	res, err := csvops.ResourceMelt(req)
	elapsed := time.Since(start)

	var longRows, summaryRows int
	if res.Long != nil {
		longRows = len(res.Long.Records)
	}
	if res.Pivot != nil {
		summaryRows = len(res.Pivot.Records)
	}
	r.metrics.ObserveReshape(source, elapsed, longRows, summaryRows, err)

	if err != nil {
		r.logger.Warn("reshape failed",
			zap.String("source", source),
			zap.String("identifier", req.Target.IdentifierColumn),
			zap.Error(err),
		)
		return res, err
	}
	r.logger.Info("reshape completed",
		zap.String("source", source),
		zap.String("identifier", req.Target.IdentifierColumn),
		zap.Int("rows", res.Summary.Processed),
		zap.Int("long_records", longRows),
		zap.Int("summary_records", summaryRows),
		zap.Int("dropped", res.Summary.Missing),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

// Sheets lists the output tables in workbook order: long first, then the
// summary when one was built.
func (r *Runner) Sheets(res csvops.ResourceMeltResponse) []types.NamedDataset {
	var out []types.NamedDataset
	if res.Long != nil {
		out = append(out, types.NamedDataset{Name: r.cfg.Export.LongSheet, Dataset: res.Long.Dataset()})
	}
	if res.Pivot != nil {
		out = append(out, types.NamedDataset{Name: r.cfg.Export.SummarySheet, Dataset: res.Pivot.Dataset()})
	}
	return out
}

// WriteWorkbook writes the result sheets as xlsx.
func (r *Runner) WriteWorkbook(w io.Writer, res csvops.ResourceMeltResponse) error {
	return sheetio.WriteWorkbook(w, r.Sheets(res)...)
}

// Filename is the download name for exported workbooks.
func (r *Runner) Filename() string {
	return r.cfg.Export.Filename
}
