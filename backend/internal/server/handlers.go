package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/csvops"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/sheetio"
	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

type errorBody struct {
	Error     string   `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
	Available []string `json:"available,omitempty"`
}

type columnsResponse struct {
	Filename         string        `json:"filename"`
	Sheet            string        `json:"sheet,omitempty"`
	Sheets           []string      `json:"sheets,omitempty"`
	Columns          []string      `json:"columns"`
	ExclusionOptions []string      `json:"exclusion_options"`
	DefaultExcluded  []string      `json:"default_excluded"`
	Rows             int           `json:"rows"`
	Preview          types.Dataset `json:"preview"`
}

// upload is a decoded multipart file plus the raw bytes, kept so xlsx sheet
// names can be listed without a second upload.
type upload struct {
	filename string
	format   sheetio.Format
	data     []byte
	dataset  types.Dataset
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleColumns lists the columns of an uploaded sheet so a client can
// offer the identifier and exclusion pickers.
func (s *Server) handleColumns(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	res := columnsResponse{
		Filename: up.filename,
		Columns:  up.dataset.Columns,
		Rows:     up.dataset.NumRows(),
		Preview:  sheetio.Preview(up.dataset),
	}
	res.ExclusionOptions, res.DefaultExcluded = csvops.ExclusionChoices(up.dataset.Columns, c.PostForm("identifier"), s.cfg.ReshapeOptions().OpOptions)
	if up.format == sheetio.FormatXLSX {
		if res.Sheets, err = sheetio.SheetNames(bytes.NewReader(up.data)); err != nil {
			s.fail(c, err)
			return
		}
		res.Sheet = c.PostForm("sheet")
		if res.Sheet == "" && len(res.Sheets) > 0 {
			res.Sheet = res.Sheets[0]
		}
	}
	c.JSON(http.StatusOK, res)
}

// handleConvert reshapes an uploaded sheet and returns the workbook, or the
// JSON response when format=json.
func (s *Server) handleConvert(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	job := s.runner.DefaultJob(c.PostForm("identifier"), c.PostFormArray("exclude"))
	if v := c.PostForm("summary"); v != "" {
		if job.Summary, err = strconv.ParseBool(v); err != nil {
			s.fail(c, fmt.Errorf("invalid summary flag %q", v))
			return
		}
	}
	if v := c.PostForm("sort"); v != "" {
		if job.SummarySort, err = parseSort(v, c.PostForm("order")); err != nil {
			s.fail(c, err)
			return
		}
	}

	res, err := s.runner.Run(c.FullPath(), up.dataset, job)
	if err != nil {
		s.fail(c, err)
		return
	}

	switch strings.ToLower(c.DefaultPostForm("format", "xlsx")) {
	case "json":
		c.JSON(http.StatusOK, res)
	case "xlsx":
		var buf bytes.Buffer
		if err := s.runner.WriteWorkbook(&buf, res); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error(), RequestID: getRequestID(c)})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.runner.Filename()))
		c.Data(http.StatusOK, sheetio.ContentTypeXLSX, buf.Bytes())
	default:
		s.fail(c, fmt.Errorf("unsupported output format %q", c.PostForm("format")))
	}
}

// handleReshape takes a JSON resource melt request and answers in JSON.
func (s *Server) handleReshape(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, err)
		return
	}
	req, err := csvops.DecodeResourceMeltRequest(body)
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %w", sheetio.ErrMalformedInput, err))
		return
	}
	res, err := s.runner.Execute(c.FullPath(), req)
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) readUpload(c *gin.Context) (*upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			return nil, err
		}
		return nil, fmt.Errorf("file is required: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	up := &upload{filename: fh.Filename, data: data}
	if v := c.PostForm("input_format"); v != "" {
		up.format, err = sheetio.ParseFormat(v)
	} else {
		up.format, err = sheetio.DetectFormat(fh.Filename)
	}
	if err != nil {
		return nil, err
	}

	up.dataset, err = sheetio.Load(bytes.NewReader(data), fh.Filename, sheetio.LoadOptions{
		Format: up.format,
		Sheet:  c.PostForm("sheet"),
	})
	if err != nil {
		return nil, err
	}
	return up, nil
}

func parseSort(mode, order string) (*csvops.SummarySortOptions, error) {
	switch csvops.SortMode(mode) {
	case csvops.SortFirstSeen:
		return nil, nil
	case csvops.SortIdentifier:
	default:
		return nil, fmt.Errorf("unknown sort %q", mode)
	}
	opts := &csvops.SummarySortOptions{Mode: csvops.SortIdentifier, Order: csvops.OrderAsc}
	if order != "" {
		opts.Order = csvops.SortOrder(strings.ToLower(order))
	}
	return opts, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	body := errorBody{Error: err.Error(), RequestID: getRequestID(c)}
	var colErr *csvops.InvalidColumnError
	if errors.As(err, &colErr) {
		body.Available = colErr.Available
	}
	c.AbortWithStatusJSON(statusFor(err), body)
}

func statusFor(err error) int {
	var colErr *csvops.InvalidColumnError
	var noRes *csvops.NoResourceColumnsError
	switch {
	case isTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &colErr), errors.As(err, &noRes):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
