package importapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"drive-gallery/internal/model"
)

const (
	userAgent       = "drive-gallery"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

// Client talks to the Import Service over its JSON/HTTP contract.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

type ReadyReport struct {
	Status string          `json:"status"`
	Checks map[string]bool `json:"checks"`
	OK     bool            `json:"-"`
}

type HealthReport struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("import service base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse import service base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("import service base url %q must be http or https", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, httpClient: hc}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type imagesResponse struct {
	Items  []model.Image `json:"items"`
	Total  *int          `json:"total"`
	Limit  *int          `json:"limit"`
	Offset *int          `json:"offset"`
}

// ListImages fetches one page. Fields the service omits fall back to the
// requested window; a missing total falls back to the number of items.
func (c *Client) ListImages(ctx context.Context, limit, offset int) (model.ImagePage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp imagesResponse
	if err := c.do(ctx, http.MethodGet, "/images", q, nil, &resp); err != nil {
		return model.ImagePage{}, err
	}

	page := model.ImagePage{
		Items:  resp.Items,
		Limit:  limit,
		Offset: offset,
	}
	if page.Items == nil {
		page.Items = []model.Image{}
	}
	page.Total = len(page.Items)
	if resp.Total != nil {
		page.Total = *resp.Total
	}
	if resp.Limit != nil {
		page.Limit = *resp.Limit
	}
	if resp.Offset != nil {
		page.Offset = *resp.Offset
	}
	return page, nil
}

type jobsResponse struct {
	Jobs []model.Job `json:"jobs"`
}

func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	var resp jobsResponse
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Jobs == nil {
		return []model.Job{}, nil
	}
	return resp.Jobs, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (model.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Job{}, errors.New("job id is required")
	}
	var job model.Job
	if err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, nil, &job); err != nil {
		return model.Job{}, err
	}
	if job.ID == "" {
		job.ID = id
	}
	return job, nil
}

type jobResultResponse struct {
	ID     string           `json:"id"`
	Result *model.JobResult `json:"result"`
}

// JobResult returns the outcome of a finished job. The service answers
// non-2xx while the job is still running.
func (c *Client) JobResult(ctx context.Context, id string) (model.JobResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.JobResult{}, errors.New("job id is required")
	}
	var resp jobResultResponse
	if err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id)+"/result", nil, nil, &resp); err != nil {
		return model.JobResult{}, err
	}
	if resp.Result == nil {
		return model.JobResult{}, nil
	}
	return *resp.Result, nil
}

type importRequest struct {
	FolderURL string `json:"folder_url"`
}

func (c *Client) StartImport(ctx context.Context, folderURL string) (model.ImportTicket, error) {
	folderURL = strings.TrimSpace(folderURL)
	if folderURL == "" {
		return model.ImportTicket{}, errors.New("folder url is required")
	}
	var ticket model.ImportTicket
	if err := c.do(ctx, http.MethodPost, "/import/google-drive", nil, importRequest{FolderURL: folderURL}, &ticket); err != nil {
		return model.ImportTicket{}, err
	}
	if strings.TrimSpace(ticket.JobID) == "" {
		return model.ImportTicket{}, errors.New("import service accepted the request without a job id")
	}
	return ticket, nil
}

func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var report HealthReport
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &report); err != nil {
		return HealthReport{}, err
	}
	return report, nil
}

// Ready reports per-dependency readiness. A 503 still carries the check
// breakdown, so it is decoded rather than returned as an error.
func (c *Client) Ready(ctx context.Context) (ReadyReport, error) {
	var report ReadyReport
	err := c.do(ctx, http.MethodGet, "/ready", nil, nil, &report)
	if err == nil {
		report.OK = true
		return report, nil
	}
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusServiceUnavailable && report.Checks != nil {
		report.OK = false
		return report, nil
	}
	return ReadyReport{}, err
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes a JSON body into out. For non-2xx answers
// it still tries to decode into out before returning a *StatusError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(data),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// errorDetail pulls the "detail" field FastAPI-style services put in error
// bodies, falling back to the trimmed body text.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		switch d := payload.Detail.(type) {
		case string:
			return d
		default:
			if data, err := json.Marshal(d); err == nil {
				return string(data)
			}
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
