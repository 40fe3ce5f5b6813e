package socket

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
	"sync"
	"time"

	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/types"
	goerrs "github.com/nicolasparada/go-errs"
	"golang.org/x/time/rate"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	maxPollBodySize     = 10 << 20
)

// LongPollDialer reaches the push channel over plain HTTP when a
// persistent connection cannot be established. The server holds each poll
// open until it has events or its own wait expires.
type LongPollDialer struct {
	BaseURL    string
	HTTPClient *http.Client
	// MinInterval spaces consecutive polls so an empty or failing server
	// is not hammered.
	MinInterval time.Duration
}

type pollResponse struct {
	Events []jsonFrame `json:"events"`
	Cursor string      `json:"cursor"`
}

func (d LongPollDialer) Dial(ctx context.Context, cred types.Credential) (Conn, error) {
	base, err := url.Parse(strings.TrimSuffix(d.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse poll url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported poll url scheme %q", base.Scheme)
	}

	interval := d.MinInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	httpClient := d.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	closeCtx, cancel := context.WithCancel(context.Background())
	c := &pollConn{
		base:    base,
		token:   cred.Token,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		closed:  closeCtx,
		cancel:  cancel,
	}

	// The first poll doubles as the handshake: it validates the credential
	// and yields the starting cursor.
	if err := c.poll(ctx); err != nil {
		cancel()
		return nil, err
	}

	return c, nil
}

type pollConn struct {
	base    *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter

	closed context.Context
	cancel context.CancelFunc

	// cursor and queue are only touched by the reading goroutine.
	cursor string
	queue  []Frame

	closeOnce sync.Once
}

func (c *pollConn) Read(ctx context.Context) (Frame, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.closed, cancel)
	defer stop()

	for len(c.queue) == 0 {
		if c.closed.Err() != nil {
			return Frame{}, errs.NotConnected
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return Frame{}, c.readErr(ctx, err)
		}
		if err := c.poll(ctx); err != nil {
			return Frame{}, c.readErr(ctx, err)
		}
	}

	f := c.queue[0]
	c.queue = c.queue[1:]
	return f, nil
}

func (c *pollConn) readErr(ctx context.Context, err error) error {
	if c.closed.Err() != nil {
		return errs.NotConnected
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *pollConn) poll(ctx context.Context) error {
	u := c.base.JoinPath("realtime", "poll")
	q := url.Values{}
	q.Set("cursor", c.cursor)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("new poll request: %w", err)
	}

	var out pollResponse
	if err := c.do(req, &out); err != nil {
		return err
	}

	c.cursor = out.Cursor
	for _, e := range out.Events {
		if e.Event == "" {
			continue
		}
		c.queue = append(c.queue, Frame{Event: e.Event, Data: []byte(e.Data)})
	}
	return nil
}

func (c *pollConn) Write(ctx context.Context, f Frame) error {
	if c.closed.Err() != nil {
		return errs.NotConnected
	}

	b, err := JSONCodec{}.Marshal(f)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath("realtime", "emit").String(), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("new emit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	return c.do(req, nil)
}

func (c *pollConn) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, errs.Network, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPollBodySize))
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, errs.Network, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return goerrs.UnauthenticatedError("poll rejected credential")
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: %w: status %d", req.Method, req.URL.Path, errs.Server, resp.StatusCode)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *pollConn) Close() error {
	c.closeOnce.Do(c.cancel)
	return nil
}
