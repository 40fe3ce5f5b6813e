package socket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/types"
)

// Conn is one live push connection. Read is only ever called from a single
// goroutine; Write and Close may be called concurrently with it.
type Conn interface {
	Read(ctx context.Context) (Frame, error)
	Write(ctx context.Context, f Frame) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, cred types.Credential) (Conn, error)
}

type DialerFunc func(ctx context.Context, cred types.Credential) (Conn, error)

func (fn DialerFunc) Dial(ctx context.Context, cred types.Credential) (Conn, error) {
	return fn(ctx, cred)
}

// FallbackDialer tries each dialer in order and returns the first
// connection established. A rejected credential stops the chain since no
// other transport would accept it either.
type FallbackDialer struct {
	Dialers []Dialer
	Logger  *slog.Logger
}

func (d FallbackDialer) Dial(ctx context.Context, cred types.Credential) (Conn, error) {
	if len(d.Dialers) == 0 {
		return nil, errors.New("no dialers configured")
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var all []error
	for i, dialer := range d.Dialers {
		conn, err := dialer.Dial(ctx, cred)
		if err == nil {
			return conn, nil
		}

		if errs.IsUnauthenticated(err) || ctx.Err() != nil {
			return nil, err
		}

		logger.Warn("transport unavailable, trying next", "index", i, "err", err)
		all = append(all, err)
	}

	return nil, fmt.Errorf("all transports failed: %w", errors.Join(all...))
}
