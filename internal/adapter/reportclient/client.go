// Package reportclient calls the report query endpoint of a remote goreporte
// server.
package reportclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/goreporte/internal/domain"
)

const (
	rawReportPath = "/api/GeneradorReporte"
	loginPath     = "/api/login"

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 1 << 20
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Token      string
	MaxRetries uint64
	UserAgent  string
}

// Client fetches raw report payloads over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	token      string
	maxRetries uint64
	userAgent  string

	initialInterval time.Duration
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", base.Scheme)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "goreporte-cli"
	}

	return &Client{
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		baseURL:         base,
		token:           cfg.Token,
		maxRetries:      cfg.MaxRetries,
		userAgent:       cfg.UserAgent,
		initialInterval: 200 * time.Millisecond,
	}, nil
}

// WithToken returns a copy of the client that sends token as bearer credentials.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// FetchReport issues GET /api/GeneradorReporte for username and directorio.
// Non-2xx responses become *domain.QueryError.
func (c *Client) FetchReport(ctx context.Context, username, directorio string) (*domain.RawReportPayload, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("directorio", directorio)

	var payload domain.RawReportPayload
	err := c.do(ctx, http.MethodGet, rawReportPath, q, nil, func(body []byte) error {
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("%w: malformed response body: %v", domain.ErrQueryFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &payload, nil
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Token, error) {
	body, err := json.Marshal(map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	err = c.do(ctx, http.MethodPost, loginPath, nil, body, func(b []byte) error {
		return json.Unmarshal(b, &resp)
	})
	if err != nil {
		var qe *domain.QueryError
		if errors.As(err, &qe) && qe.StatusCode == http.StatusUnauthorized {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	return &domain.Token{
		Value:     resp.Token,
		Username:  resp.Username,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, decode func([]byte) error) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	operation := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json, text/plain")
		req.Header.Set("User-Agent", c.userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return err
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			qe := &domain.QueryError{
				StatusCode: resp.StatusCode,
				Message:    displayBody(data),
			}
			if resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusServiceUnavailable {
				return qe
			}
			return backoff.Permanent(qe)
		}

		return backoff.Permanent(decode(data))
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx))
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrQueryTimeout, err)
	}
	return err
}

// displayBody renders an error body for display. Bodies that parse as JSON
// are re-serialized in compact form (a JSON string is shown unquoted);
// anything else is shown verbatim.
func displayBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return string(trimmed)
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
