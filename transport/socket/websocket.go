package socket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/coder/websocket"
	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/types"
	goerrs "github.com/nicolasparada/go-errs"
)

const defaultReadLimit = 1 << 20

type WebsocketDialer struct {
	URL        string
	Codec      Codec
	HTTPClient *http.Client
	// ReadLimit caps the size of one inbound message.
	ReadLimit int64
}

func (d WebsocketDialer) Dial(ctx context.Context, cred types.Credential) (Conn, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("parse socket url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported socket url scheme %q", u.Scheme)
	}

	codec := d.Codec
	if codec == nil {
		codec = JSONCodec{}
	}

	q := u.Query()
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()

	header := http.Header{}
	if cred.Token != "" {
		header.Set("Authorization", "Bearer "+cred.Token)
	}

	ws, resp, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{ //nolint:bodyclose // websocket.Dial closes the response body internally
		HTTPClient: d.HTTPClient,
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, goerrs.UnauthenticatedError("socket rejected credential")
		}
		return nil, fmt.Errorf("dial websocket: %w: %v", errs.Network, err)
	}

	readLimit := d.ReadLimit
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	ws.SetReadLimit(readLimit)

	return &wsConn{ws: ws, codec: codec}, nil
}

type wsConn struct {
	ws    *websocket.Conn
	codec Codec

	closeOnce sync.Once
}

func (c *wsConn) Read(ctx context.Context) (Frame, error) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return Frame{}, wsErr(err)
		}

		if c.codec.Binary() != (typ == websocket.MessageBinary) {
			continue
		}

		var f Frame
		if err := c.codec.Unmarshal(data, &f); err != nil {
			return Frame{}, err
		}
		return f, nil
	}
}

func (c *wsConn) Write(ctx context.Context, f Frame) error {
	b, err := c.codec.Marshal(f)
	if err != nil {
		return err
	}

	typ := websocket.MessageText
	if c.codec.Binary() {
		typ = websocket.MessageBinary
	}

	if err := c.ws.Write(ctx, typ, b); err != nil {
		return wsErr(err)
	}
	return nil
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.ws.Close(websocket.StatusNormalClosure, "bye")
	})
	return err
}

func wsErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if websocket.CloseStatus(err) == websocket.StatusPolicyViolation {
		return goerrs.UnauthenticatedError("socket closed by server: policy violation")
	}
	return fmt.Errorf("%w: %v", errs.Network, err)
}
