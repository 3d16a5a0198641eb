// Package client is the HTTP boundary to the external document-processing
// service. It produces and consumes the wire shapes in internal/entity and
// maps failures onto the taxonomy in internal/common.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"docrecon/internal/common"
	"docrecon/internal/entity"
)

// LedgerFormat selects the submission endpoint variant.
const (
	LedgerFormatCSV  = "csv"
	LedgerFormatXLSX = "xlsx"
)

// Config for the service client.
type Config struct {
	BaseURL string        // e.g. http://localhost:8000
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// FileUpload is one document attached to a submission.
type FileUpload struct {
	Name string
	Data []byte
}

// SubmitRequest carries everything a job creation needs.
type SubmitRequest struct {
	Files        []FileUpload
	SystemPrompt string
	UserPrompt   string
	LedgerName   string // optional; empty means no ledger integration
	LedgerData   []byte
	LedgerFormat string // LedgerFormatCSV or LedgerFormatXLSX when LedgerName set
}

func (r SubmitRequest) endpoint() string {
	switch {
	case r.LedgerName == "":
		return "/upload-multiple-pdfs"
	case r.LedgerFormat == LedgerFormatXLSX:
		return "/upload-multiple-pdfs-with-ledger-xlsx"
	default:
		return "/upload-multiple-pdfs-with-ledger"
	}
}

// SubmitJob sends a multipart creation request. On any failure it returns an
// error satisfying errors.Is(err, common.ErrSubmission) whose message carries
// the service-reported detail, or a generic network message; no partial state
// is left behind.
func (c *Client) SubmitJob(ctx context.Context, req SubmitRequest) (*entity.SubmitResponse, error) {
	reqID := uuid.New().String()
	start := time.Now()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range req.Files {
		fw, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
	}
	if err := mw.WriteField("system_prompt", req.SystemPrompt); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if err := mw.WriteField("user_prompt", req.UserPrompt); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if req.LedgerName != "" {
		fw, err := mw.CreateFormFile("ledger_file", req.LedgerName)
		if err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		if _, err := fw.Write(req.LedgerData); err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}

	url := c.cfg.BaseURL + req.endpoint()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	c.log.Info("client.submit.request",
		"req_id", reqID,
		"url", url,
		"files", len(req.Files),
		"ledger", req.LedgerName != "",
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Error("client.submit.send_error", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewSubmissionError(fmt.Sprintf("network error: %v", err))
	}
	defer c.closeBody(resp.Body, reqID)

	raw, _ := io.ReadAll(resp.Body)
	c.log.Info("client.submit.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, common.NewSubmissionError(apiDetail(raw, resp.StatusCode))
	}

	var out entity.SubmitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, common.NewSubmissionError(fmt.Sprintf("malformed response: %v", err))
	}
	return &out, nil
}

// JobStatus fetches the current snapshot for one job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*entity.JobSnapshot, error) {
	var snap entity.JobSnapshot
	if err := c.getJSON(ctx, "/job-status/"+jobID, &snap, nil); err != nil {
		return nil, err
	}
	return &snap, nil
}

// JobResults fetches the derived payload of a completed job. The raw body is
// checked against the result schema first; a mismatch is logged and decoding
// proceeds anyway, since partial data is more useful than an aborted export.
func (c *Client) JobResults(ctx context.Context, jobID string) (*entity.JobResult, error) {
	var result entity.JobResult
	validate := func(raw []byte) {
		if err := ValidateJSONAgainstSchema(BuildJobResultSchema(), raw); err != nil {
			c.log.Warn("client.results.schema_mismatch", "job_id", jobID, "error", err)
		}
	}
	if err := c.getJSON(ctx, "/job-results/"+jobID, &result, validate); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobs fetches the full roster.
func (c *Client) ListJobs(ctx context.Context) ([]entity.JobSnapshot, error) {
	var list entity.JobsList
	if err := c.getJSON(ctx, "/jobs", &list, nil); err != nil {
		return nil, err
	}
	return list.Jobs, nil
}

// DeleteJob requests deletion. Failures return an error satisfying
// errors.Is(err, common.ErrDeletion) with the service detail verbatim.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	reqID := uuid.New().String()
	url := c.cfg.BaseURL + "/job/" + jobID

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("client.delete.send_error", "req_id", reqID, "job_id", jobID, "error", err)
		return common.NewDeletionError(fmt.Sprintf("network error: %v", err))
	}
	defer c.closeBody(resp.Body, reqID)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return common.NewDeletionError(apiDetail(raw, resp.StatusCode))
	}
	var out entity.DeleteResponse
	_ = json.Unmarshal(raw, &out)
	c.log.Info("client.delete.ok", "req_id", reqID, "job_id", jobID, "message", out.Message)
	return nil
}

// getJSON performs a GET and decodes the 2xx body into out. When inspect is
// non-nil it sees the raw body before decoding.
func (c *Client) getJSON(ctx context.Context, path string, out any, inspect func([]byte)) error {
	reqID := uuid.New().String()
	start := time.Now()
	url := c.cfg.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("client.get.send_error", "req_id", reqID, "url", url, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return err
	}
	defer c.closeBody(resp.Body, reqID)

	raw, _ := io.ReadAll(resp.Body)
	c.log.Info("client.get.response",
		"req_id", reqID,
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("GET %s: %s", path, apiDetail(raw, resp.StatusCode))
	}
	if inspect != nil {
		inspect(raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) closeBody(body io.ReadCloser, reqID string) {
	if err := body.Close(); err != nil {
		c.log.Warn("client.response_body_close_error", "req_id", reqID, "error", err)
	}
}

// apiDetail extracts the {detail} envelope, falling back to the status code.
func apiDetail(raw []byte, status int) string {
	var apiErr entity.APIError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fmt.Sprintf("non-2xx status: %d", status)
}
