// Package client is a typed HTTP client for the casegraph API. It is what the
// command line tool uses to talk to a running server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"casegraph/application/queries"
	"casegraph/domain/casenet"
	pkgerrors "casegraph/pkg/errors"
)

// DefaultTimeout bounds a single request
const DefaultTimeout = 30 * time.Second

// Client talks to the casegraph REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sets a bearer token on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080")
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CaseNetwork fetches the network graph of a case
func (c *Client) CaseNetwork(ctx context.Context, caseID string) (casenet.GraphData, error) {
	var graph casenet.GraphData
	if err := c.getJSON(ctx, "/api/graph/case/"+url.PathEscape(caseID), "case", &graph); err != nil {
		return casenet.GraphData{}, err
	}
	return graph, nil
}

// RelatedTransactions fetches the transactions related to a case
func (c *Client) RelatedTransactions(ctx context.Context, caseID string) (*queries.GetRelatedTransactionsResult, error) {
	var result queries.GetRelatedTransactionsResult
	if err := c.getJSON(ctx, "/api/cases/"+url.PathEscape(caseID)+"/related", "case", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EmployeeNetwork fetches the network graph of an employee. A limit of zero
// leaves the server default in place.
func (c *Client) EmployeeNetwork(ctx context.Context, employeeID string, limit int) (casenet.GraphData, error) {
	path := "/api/graph/employee/" + url.PathEscape(employeeID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var graph casenet.GraphData
	if err := c.getJSON(ctx, path, "employee", &graph); err != nil {
		return casenet.GraphData{}, err
	}
	return graph, nil
}

// Health reports whether the server answers its readiness probe
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	return c.getJSON(ctx, "/ready", "server", &status)
}

func (c *Client) getJSON(ctx context.Context, path, resource string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.NewUnavailableError(c.baseURL).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp.StatusCode, resource, body)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// statusError maps an error response back onto the application error types,
// keeping the server's message.
func statusError(status int, resource string, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		message = errResp.Error
	}

	var appErr *pkgerrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = pkgerrors.NewNotFoundError(resource)
	case status == http.StatusBadRequest:
		appErr = pkgerrors.NewValidationError(message)
	case status == http.StatusUnauthorized:
		appErr = pkgerrors.NewUnauthorizedError(message)
	case status == http.StatusTooManyRequests:
		appErr = pkgerrors.NewRateLimitError(0, "window")
	case status == http.StatusServiceUnavailable:
		appErr = pkgerrors.NewUnavailableError(resource)
	default:
		appErr = pkgerrors.NewInternalError(message)
	}
	if message != "" {
		appErr.Message = message
	}
	appErr.HTTPStatus = status
	return appErr
}
