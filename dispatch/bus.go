package dispatch

import (
	"fmt"
	"log/slog"
	"sync"
)

type Topic string

const (
	TopicConversationsRefresh Topic = "conversations.refresh"
	TopicConversationsChanged Topic = "conversations.changed"
	TopicMessagesChanged      Topic = "messages.changed"
	TopicTypingChanged        Topic = "typing.changed"
	TopicPresenceChanged      Topic = "presence.changed"
	TopicNotificationsChanged Topic = "notifications.changed"
	TopicSessionState         Topic = "session.state"
)

type subscriber struct {
	seq uint64
	fn  func(payload any)
}

type Bus struct {
	logger *slog.Logger

	mu   sync.RWMutex
	seq  uint64
	subs map[Topic][]subscriber
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger: logger,
		subs:   map[Topic][]subscriber{},
	}
}

// Subscribe returns a func that removes the subscription. Calling it more
// than once is fine.
func (b *Bus) Subscribe(topic Topic, fn func(payload any)) func() {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.subs[topic] = append(b.subs[topic], subscriber{seq: seq, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			list := b.subs[topic]
			out := make([]subscriber, 0, len(list))
			for _, s := range list {
				if s.seq != seq {
					out = append(out, s)
				}
			}
			b.subs[topic] = out
		})
	}
}

// Publish calls the subscribers of topic synchronously. Publishers must not
// hold their own locks while publishing.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	list := append([]subscriber(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, s := range list {
		func() {
			defer func() {
				if rcv := recover(); rcv != nil {
					b.logger.Error("bus subscriber failed", "topic", topic, "error", fmt.Errorf("panic: %v", rcv))
				}
			}()
			s.fn(payload)
		}()
	}
}
