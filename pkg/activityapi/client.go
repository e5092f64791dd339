// Package activityapi is an HTTP client for the activity log endpoints of the residence admin API.
package activityapi

import (
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

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
)

// DefaultTimeout bounds every request so a hung server cannot leave a query loading forever.
const DefaultTimeout = 15 * time.Second

const maxErrorBody = 64 << 10

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. WithTimeout is ignored afterwards.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout. Defaults to 15s.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to the activity log REST API. It implements activitylog.Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     zerolog.Logger
}

var _ activitylog.Source = (*Client)(nil)

// New creates a client for the API rooted at baseURL (for example http://localhost:8080/api/v1).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "activity_api_client").Logger()
	return c
}

// envelope mirrors utils.APIResponse on the server.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
}

func (e envelope) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// FetchLogs lists logs matching filters via GET /activity-logs.
func (c *Client) FetchLogs(ctx context.Context, filters activitylog.QueryFilters) (activitylog.Page, error) {
	var page activitylog.Page
	if _, err := c.do(ctx, http.MethodGet, "/activity-logs", filters.Values(), &page); err != nil {
		return activitylog.Page{}, err
	}
	return page, nil
}

// FetchUserLogs lists the logs of one user via GET /activity-logs/users/{userId}.
func (c *Client) FetchUserLogs(ctx context.Context, userID int64, ol activitylog.OffsetLimit) (activitylog.Page, error) {
	query := activitylog.QueryFilters{Limit: ol.Limit, Offset: ol.Offset}.Values()

	var page activitylog.Page
	path := fmt.Sprintf("/activity-logs/users/%d", userID)
	if _, err := c.do(ctx, http.MethodGet, path, query, &page); err != nil {
		return activitylog.Page{}, err
	}
	return page, nil
}

// FetchLogByID retrieves one log via GET /activity-logs/{id}.
func (c *Client) FetchLogByID(ctx context.Context, id int64) (activitylog.Entry, error) {
	var entry activitylog.Entry
	if _, err := c.do(ctx, http.MethodGet, "/activity-logs/"+strconv.FormatInt(id, 10), nil, &entry); err != nil {
		var serverErr *activitylog.ServerError
		if errors.As(err, &serverErr) && serverErr.StatusCode == http.StatusNotFound {
			return activitylog.Entry{}, &activitylog.NotFoundError{ID: id}
		}
		return activitylog.Entry{}, err
	}
	return entry, nil
}

// FetchStats retrieves aggregate counts via GET /activity-logs/stats.
func (c *Client) FetchStats(ctx context.Context) (activitylog.Stats, error) {
	var stats activitylog.Stats
	if _, err := c.do(ctx, http.MethodGet, "/activity-logs/stats", nil, &stats); err != nil {
		return activitylog.Stats{}, err
	}
	return stats, nil
}

// DeleteAll removes every log via DELETE /activity-logs and returns the server message.
func (c *Client) DeleteAll(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodDelete, "/activity-logs", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) (string, error) {
	op := method + " " + path
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("activity api request failed")
		return "", &activitylog.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("activity api request completed")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", readError(op, resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode %s response: %w", op, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode %s data: %w", op, err)
		}
	}
	return env.text(), nil
}

func readError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env envelope
	message := ""
	if err := json.Unmarshal(body, &env); err == nil {
		message = env.text()
	} else {
		message = strings.TrimSpace(string(body))
	}
	return &activitylog.ServerError{Op: op, StatusCode: resp.StatusCode, Message: message}
}
