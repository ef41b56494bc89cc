// Package client talks to the classification backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-ispdn/pkg/contract"
	"github.com/goliatone/go-ispdn/pkg/model"
)

// ErrTransport matches every network failure and non-2xx response.
var ErrTransport = errors.New("backend transport failure")

// ErrContract matches bodies rejected by the OpenAPI contract.
var ErrContract = errors.New("backend contract violation")

const (
	defaultTimeout  = 30 * time.Second
	maxErrorSnippet = 512
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. The timeout option is ignored
// for clients that set their own Timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			clone := *hc
			c.http = &clone
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithContract enables request and response validation against the backend
// description.
func WithContract(spec *contract.Contract) Option {
	return func(c *Client) {
		c.contract = spec
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client implements the evaluate and export endpoints.
type Client struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	contract *contract.Contract
	logger   *slog.Logger
}

// New builds a client for baseURL, e.g. http://localhost:8000.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid backend url", goerr.V("url", baseURL))
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, goerr.New("backend url must be absolute", goerr.V("url", baseURL))
	}

	c := &Client{
		base:    parsed,
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.http.Timeout == 0 {
		c.http.Timeout = c.timeout
	}
	return c, nil
}

// Evaluate posts answers to the evaluate endpoint.
func (c *Client) Evaluate(ctx context.Context, answers model.AnswerSet) (model.EvaluationResult, error) {
	if answers.Threats == nil {
		answers.Threats = []model.ThreatType{}
	}
	body, _, err := c.do(ctx, contract.OpEvaluate, answers)
	if err != nil {
		return model.EvaluationResult{}, err
	}

	var res model.EvaluationResult
	if err := json.Unmarshal(body, &res); err != nil {
		return model.EvaluationResult{}, goerr.Wrap(errors.Join(ErrTransport, err), "failed to decode evaluation result")
	}
	return res, nil
}

// Export renders the report document.
func (c *Client) Export(ctx context.Context, req model.ExportRequest) (model.Document, error) {
	if req.Payload.Threats == nil {
		req.Payload.Threats = []model.ThreatType{}
	}
	body, contentType, err := c.do(ctx, contract.OpExport, req)
	if err != nil {
		return model.Document{}, err
	}
	return model.Document{Name: req.FileName, ContentType: contentType, Body: body}, nil
}

// ExportAct renders the act with organisation details.
func (c *Client) ExportAct(ctx context.Context, req model.ActExportRequest) (model.Document, error) {
	if req.Payload.Threats == nil {
		req.Payload.Threats = []model.ThreatType{}
	}
	body, contentType, err := c.do(ctx, contract.OpExportAct, req)
	if err != nil {
		return model.Document{}, err
	}
	return model.Document{Name: req.FileName, ContentType: contentType, Body: body}, nil
}

// ActTemplate downloads the blank act.
func (c *Client) ActTemplate(ctx context.Context) (model.Document, error) {
	body, contentType, err := c.do(ctx, contract.OpActSelf, nil)
	if err != nil {
		return model.Document{}, err
	}
	return model.Document{ContentType: contentType, Body: body}, nil
}

var fallbackRoutes = map[string][2]string{
	contract.OpEvaluate:  {http.MethodPost, "/evaluate"},
	contract.OpExport:    {http.MethodPost, "/export"},
	contract.OpExportAct: {http.MethodPost, "/export-act"},
	contract.OpActSelf:   {http.MethodGet, "/act-self"},
}

func (c *Client) route(operationID string) (string, string) {
	if c.contract != nil {
		if ep, err := c.contract.Endpoint(operationID); err == nil {
			return ep.Method, ep.Path
		}
	}
	r := fallbackRoutes[operationID]
	return r[0], r[1]
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// do sends payload (JSON encoded unless nil) and returns the body of a 2xx
// response with its content type.
func (c *Client) do(ctx context.Context, operationID string, payload any) ([]byte, string, error) {
	method, path := c.route(operationID)
	target := c.endpoint(path)

	var reqBody []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to encode request", goerr.V("operation", operationID))
		}
		reqBody = encoded
	}
	if c.contract != nil {
		if err := c.contract.ValidateRequest(operationID, reqBody); err != nil {
			return nil, "", goerr.Wrap(errors.Join(ErrContract, err), "request rejected by contract", goerr.V("operation", operationID))
		}
	}

	var reader io.Reader
	if reqBody != nil {
		reader = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to create request", goerr.V("endpoint", target))
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", goerr.Wrap(errors.Join(ErrTransport, err), "backend request failed",
			goerr.V("endpoint", target),
			goerr.V("method", method))
	}
	defer closeBody(c.logger, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", goerr.Wrap(errors.Join(ErrTransport, err), "failed to read response body", goerr.V("endpoint", target))
	}
	c.logger.DebugContext(ctx, "backend call",
		slog.String("operation", operationID),
		slog.String("method", method),
		slog.String("endpoint", target),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", goerr.Wrap(ErrTransport, "backend returned non-success status",
			goerr.V("endpoint", target),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", snippet(body)))
	}

	if c.contract != nil {
		if err := c.contract.ValidateResponse(operationID, resp.StatusCode, body); err != nil {
			return nil, "", goerr.Wrap(errors.Join(ErrContract, err), "response rejected by contract", goerr.V("operation", operationID))
		}
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" && c.contract != nil {
		contentType = c.contract.ResponseContentType(operationID)
	}
	return body, contentType, nil
}

func snippet(body []byte) string {
	if len(body) > maxErrorSnippet {
		body = body[:maxErrorSnippet]
	}
	return string(body)
}

func closeBody(logger *slog.Logger, body io.Closer) {
	if err := body.Close(); err != nil {
		logger.Warn("failed to close response body", slog.Any("error", err))
	}
}
