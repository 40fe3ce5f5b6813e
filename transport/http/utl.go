package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nakamauwu/chatsync/errs"
	goerrs "github.com/nicolasparada/go-errs"
	"github.com/tidwall/gjson"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 10 << 20
)

type Config struct {
	BaseURL string
	// Token returns the bearer credential for each request.
	Token      func() string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     log.Logger
	// OnUnauthorized runs whenever the backend rejects the credential.
	OnUnauthorized func()
}

// Client is the REST boundary. Every endpoint decodes into one known shape
// so callers never look at raw responses.
type Client struct {
	baseURL        *url.URL
	token          func() string
	http           *http.Client
	logger         log.Logger
	onUnauthorized func()
}

func New(cfg Config) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", baseURL.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	token := cfg.Token
	if token == nil {
		token = func() string { return "" }
	}

	return &Client{
		baseURL:        baseURL,
		token:          token,
		http:           httpClient,
		logger:         logger,
		onUnauthorized: cfg.OnUnauthorized,
	}, nil
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(q) != 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("json marshal request body: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, q), r)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	return req, nil
}

func (c *Client) authorize(req *http.Request) {
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do sends req and hands the body of a 2xx response to decode. A 2xx body
// carrying a warning still decodes and returns a partial success error.
func (c *Client) do(req *http.Request, decode func([]byte) error) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return c.transportErr(req, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusErr(req, resp.StatusCode, body)
	}

	if decode != nil && len(bytes.TrimSpace(body)) != 0 {
		if err := decode(body); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
		}
	}

	if warning := gjson.GetBytes(body, "warning"); warning.Exists() && warning.String() != "" {
		return errs.NewPartialSuccessError(warning.String())
	}

	return nil
}

// send performs the round trip and maps failures that happened before any
// response was received.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportErr(req, err)
	}
	return resp, nil
}

func (c *Client) transportErr(req *http.Request, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	_ = level.Error(c.logger).Log("method", req.Method, "path", req.URL.Path, "err", err)

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, errs.Timeout)
	}
	return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, errs.Network, err)
}

func (c *Client) statusErr(req *http.Request, statusCode int, body []byte) error {
	msg := errMessage(body, statusCode)

	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return goerrs.InvalidArgumentError(msg)
	case http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return goerrs.UnauthenticatedError(msg)
	case http.StatusForbidden:
		return goerrs.PermissionDeniedError(msg)
	case http.StatusNotFound:
		return goerrs.NotFoundError(msg)
	case http.StatusConflict:
		return goerrs.ConflictError(msg)
	}

	if statusCode >= 500 {
		_ = level.Error(c.logger).Log("method", req.Method, "path", req.URL.Path, "status", statusCode, "err", msg)
		return fmt.Errorf("%s %s: %w: %d %s", req.Method, req.URL.Path, errs.Server, statusCode, msg)
	}

	return fmt.Errorf("%s %s: unexpected status %d: %s", req.Method, req.URL.Path, statusCode, msg)
}

func errMessage(body []byte, statusCode int) string {
	if gjson.ValidBytes(body) {
		if m := gjson.GetBytes(body, "message"); m.String() != "" {
			return m.String()
		}
		if m := gjson.GetBytes(body, "error"); m.String() != "" {
			return m.String()
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 256 {
		return s
	}
	return strings.ToLower(http.StatusText(statusCode))
}
