package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/types"
	"github.com/nats-io/nats.go"
)

const natsInboxSize = 256

func UserSubject(userID string) string {
	return "chat.user." + userID
}

func RoomSubject(conversationID string) string {
	return "chat.room." + conversationID
}

func EmitSubject(event string) string {
	return "chat.emit." + event
}

// NATSDialer joins the push channel through a NATS broker. Events for the
// user arrive on their inbox subject, room events on one subject per
// joined conversation, and outbound events are published per event name.
type NATSDialer struct {
	URL     string
	Codec   Codec
	Options []nats.Option
}

func (d NATSDialer) Dial(ctx context.Context, cred types.Credential) (Conn, error) {
	if cred.User.ID == "" {
		return nil, errors.New("nats transport requires a user id")
	}

	codec := d.Codec
	if codec == nil {
		codec = JSONCodec{}
	}

	c := &natsConn{
		codec: codec,
		msgs:  make(chan *nats.Msg, natsInboxSize),
		done:  make(chan struct{}),
		rooms: map[string]*nats.Subscription{},
	}

	opts := []nats.Option{
		nats.Name("chatsync"),
		// The session owns reconnection.
		nats.NoReconnect(),
		nats.ClosedHandler(func(*nats.Conn) { c.markDone() }),
		nats.DisconnectErrHandler(func(_ *nats.Conn, _ error) { c.markDone() }),
	}
	if cred.Token != "" {
		opts = append(opts, nats.Token(cred.Token))
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}
	opts = append(opts, d.Options...)

	nc, err := nats.Connect(d.URL, opts...)
	if err != nil {
		if errors.Is(err, nats.ErrAuthorization) {
			return nil, fmt.Errorf("nats connect: %w", errs.Unauthenticated)
		}
		return nil, fmt.Errorf("nats connect: %w: %v", errs.Network, err)
	}
	c.nc = nc

	if _, err := nc.ChanSubscribe(UserSubject(cred.User.ID), c.msgs); err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats subscribe user inbox: %w", err)
	}

	if err := nc.FlushWithContext(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats flush: %w: %v", errs.Network, err)
	}

	return c, nil
}

type natsConn struct {
	nc    *nats.Conn
	codec Codec
	msgs  chan *nats.Msg

	doneOnce sync.Once
	done     chan struct{}

	mu    sync.Mutex
	rooms map[string]*nats.Subscription
}

func (c *natsConn) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *natsConn) Read(ctx context.Context) (Frame, error) {
	for {
		select {
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case <-c.done:
			return Frame{}, errs.NotConnected
		case msg := <-c.msgs:
			var f Frame
			if err := c.codec.Unmarshal(msg.Data, &f); err != nil {
				continue
			}
			return f, nil
		}
	}
}

// Write publishes f and mirrors room membership as subject subscriptions.
func (c *natsConn) Write(ctx context.Context, f Frame) error {
	select {
	case <-c.done:
		return errs.NotConnected
	default:
	}

	switch f.Event {
	case EventJoinRoom:
		if err := c.subscribeRoom(f.Data); err != nil {
			return err
		}
	case EventLeaveRoom:
		c.unsubscribeRoom(f.Data)
	}

	b, err := c.codec.Marshal(f)
	if err != nil {
		return err
	}

	if err := c.nc.Publish(EmitSubject(f.Event), b); err != nil {
		return fmt.Errorf("nats publish %s: %w: %v", f.Event, errs.Network, err)
	}
	return c.nc.FlushWithContext(ctx)
}

func roomOf(data []byte) (string, error) {
	var conversationID string
	if err := json.Unmarshal(data, &conversationID); err != nil || conversationID == "" {
		return "", fmt.Errorf("room event without conversation id")
	}
	return conversationID, nil
}

func (c *natsConn) subscribeRoom(data []byte) error {
	conversationID, err := roomOf(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rooms[conversationID]; ok {
		return nil
	}

	sub, err := c.nc.ChanSubscribe(RoomSubject(conversationID), c.msgs)
	if err != nil {
		return fmt.Errorf("nats subscribe room: %w", err)
	}
	c.rooms[conversationID] = sub
	return nil
}

func (c *natsConn) unsubscribeRoom(data []byte) {
	conversationID, err := roomOf(data)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sub, ok := c.rooms[conversationID]; ok {
		_ = sub.Unsubscribe()
		delete(c.rooms, conversationID)
	}
}

func (c *natsConn) Close() error {
	c.nc.Close()
	c.markDone()
	return nil
}
