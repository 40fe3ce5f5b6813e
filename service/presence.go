package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/transport/socket"
	"github.com/nakamauwu/chatsync/types"
)

const (
	DefaultTypingQuiet  = time.Second
	DefaultTypingExpiry = 3 * time.Second

	maxRemoteTyping = 1024
	emitTimeout     = 5 * time.Second
)

// StatusUpdater receives presence changes for the loaded conversations.
type StatusUpdater interface {
	ApplyStatus(userID string, status types.UserStatus)
}

type PresenceConfig struct {
	Emitter  Emitter
	Bus      *dispatch.Bus
	Statuses StatusUpdater
	Me       types.User
	Logger   *slog.Logger
	// TypingQuiet is how long after the last keystroke the stop is sent.
	TypingQuiet time.Duration
	// TypingExpiry drops a remote typing flag whose stop event never came.
	TypingExpiry time.Duration
}

type typingKey struct {
	ConversationID string
	UserID         string
}

type burst struct {
	timer *time.Timer
	token uint64
}

// Presence tracks who is typing where and who is online.
type Presence struct {
	emitter  Emitter
	bus      *dispatch.Bus
	statuses StatusUpdater
	me       types.User
	logger   *slog.Logger
	quiet    time.Duration

	// remote expires stale typing flags. The cache's expiry goroutine cannot
	// be stopped and lives until the process exits, so a Presence is made
	// once per Service and Close only silences it.
	remote *expirable.LRU[typingKey, struct{}]
	closed atomic.Bool

	mu     sync.Mutex
	bursts map[typingKey]*burst
	status map[string]types.StatusEvent
}

func NewPresence(cfg PresenceConfig) *Presence {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Bus == nil {
		cfg.Bus = dispatch.NewBus(cfg.Logger)
	}
	if cfg.TypingQuiet <= 0 {
		cfg.TypingQuiet = DefaultTypingQuiet
	}
	if cfg.TypingExpiry <= 0 {
		cfg.TypingExpiry = DefaultTypingExpiry
	}

	p := &Presence{
		emitter:  cfg.Emitter,
		bus:      cfg.Bus,
		statuses: cfg.Statuses,
		me:       cfg.Me,
		logger:   cfg.Logger,
		quiet:    cfg.TypingQuiet,
		bursts:   map[typingKey]*burst{},
		status:   map[string]types.StatusEvent{},
	}

	// Eviction runs with the cache locked, so the notification is sent from
	// its own goroutine.
	p.remote = expirable.NewLRU[typingKey, struct{}](maxRemoteTyping, func(key typingKey, _ struct{}) {
		if p.closed.Load() {
			return
		}
		go p.bus.Publish(dispatch.TopicTypingChanged, key.ConversationID)
	}, cfg.TypingExpiry)

	return p
}

func (p *Presence) emit(ctx context.Context, event string, payload any) error {
	if p.emitter == nil {
		return nil
	}
	err := p.emitter.Emit(ctx, event, payload)
	if errors.Is(err, errs.NotConnected) {
		p.logger.Debug("typing event not sent", "event", event, "err", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// StartTyping is called on every keystroke. Only the first keystroke of a
// burst emits typing-start; each one pushes the typing-stop back by the
// quiet period.
func (p *Presence) StartTyping(ctx context.Context, conversationID, userID string) error {
	key := typingKey{ConversationID: conversationID, UserID: userID}

	p.mu.Lock()
	b, typing := p.bursts[key]
	if !typing {
		b = &burst{}
		p.bursts[key] = b
	}
	b.token++
	token := b.token
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(p.quiet, func() { p.quietElapsed(key, token) })
	p.mu.Unlock()

	if typing {
		return nil
	}

	return p.emit(ctx, socket.EventTypingStart, socket.TypingPayload{
		ConversationID: conversationID,
		UserID:         userID,
	})
}

func (p *Presence) quietElapsed(key typingKey, token uint64) {
	p.mu.Lock()
	b, ok := p.bursts[key]
	if !ok || b.token != token {
		p.mu.Unlock()
		return
	}
	delete(p.bursts, key)
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()

	err := p.emit(ctx, socket.EventTypingStop, socket.TypingPayload{
		ConversationID: key.ConversationID,
		UserID:         key.UserID,
	})
	if err != nil {
		p.logger.Warn("could not send typing stop", "conversation", key.ConversationID, "err", err)
	}
}

// StopTyping ends a burst right away, for example when the message is sent.
func (p *Presence) StopTyping(ctx context.Context, conversationID, userID string) error {
	key := typingKey{ConversationID: conversationID, UserID: userID}

	p.mu.Lock()
	b, ok := p.bursts[key]
	if ok {
		b.timer.Stop()
		delete(p.bursts, key)
	}
	p.mu.Unlock()

	if !ok {
		return nil
	}

	return p.emit(ctx, socket.EventTypingStop, socket.TypingPayload{
		ConversationID: conversationID,
		UserID:         userID,
	})
}

// OnRemoteTyping updates the typing set of a conversation. A typing flag
// expires on its own if the matching stop never arrives.
func (p *Presence) OnRemoteTyping(userID, conversationID string, isTyping bool) {
	if userID == p.me.ID {
		return
	}

	key := typingKey{ConversationID: conversationID, UserID: userID}
	if !isTyping {
		// eviction publishes the change
		p.remote.Remove(key)
		return
	}

	p.remote.Add(key, struct{}{})
	p.bus.Publish(dispatch.TopicTypingChanged, conversationID)
}

// Typing returns the users currently typing in a conversation, sorted.
func (p *Presence) Typing(conversationID string) []string {
	var out []string
	for _, key := range p.remote.Keys() {
		if key.ConversationID == conversationID {
			out = append(out, key.UserID)
		}
	}
	slices.Sort(out)
	return out
}

func (p *Presence) OnStatusChange(userID string, status types.UserStatus) {
	p.setStatus(types.StatusEvent{UserID: userID, Status: status})
	p.bus.Publish(dispatch.TopicPresenceChanged, userID)
}

func (p *Presence) OnPresenceBulk(events []types.StatusEvent) {
	for _, ev := range events {
		p.setStatus(ev)
	}
	if len(events) != 0 {
		p.bus.Publish(dispatch.TopicPresenceChanged, nil)
	}
}

func (p *Presence) setStatus(ev types.StatusEvent) {
	if ev.UserID == "" {
		return
	}

	p.mu.Lock()
	p.status[ev.UserID] = ev
	p.mu.Unlock()

	if p.statuses != nil {
		p.statuses.ApplyStatus(ev.UserID, ev.Status)
	}
}

// Status returns the last known status of userID.
func (p *Presence) Status(userID string) (types.StatusEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ev, ok := p.status[userID]
	return ev, ok
}

// RequestPresence asks the server for the status of userIDs. The answer
// arrives as a presence-bulk event.
func (p *Presence) RequestPresence(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return p.emit(ctx, socket.EventGetPresence, userIDs)
}

// Close stops the pending typing timers without emitting and drops the
// remote typing flags without publishing.
func (p *Presence) Close() {
	p.closed.Store(true)

	p.mu.Lock()
	defer p.mu.Unlock()

	for key, b := range p.bursts {
		b.timer.Stop()
		delete(p.bursts, key)
	}
	p.remote.Purge()
}
