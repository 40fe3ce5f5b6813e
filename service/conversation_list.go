package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/textutil"
	"github.com/nakamauwu/chatsync/types"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshInterval = 30 * time.Second

	previewLength = 80
)

type ConversationListConfig struct {
	Backend         ConversationBackend
	Bus             *dispatch.Bus
	Me              types.User
	Logger          *slog.Logger
	RefreshInterval time.Duration
}

// ConversationList keeps the conversations ordered by most recent activity.
// Push events keep it current and a periodic full refresh repairs whatever
// they missed.
type ConversationList struct {
	backend  ConversationBackend
	bus      *dispatch.Bus
	me       types.User
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	refresh singleflight.Group

	mu    sync.Mutex
	items []types.Conversation
	// version counts local changes to previews and unread counters.
	// touched holds the version of each conversation's latest such change.
	version uint64
	touched map[string]uint64
}

func NewConversationList(cfg ConversationListConfig) *ConversationList {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Bus == nil {
		cfg.Bus = dispatch.NewBus(cfg.Logger)
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	return &ConversationList{
		backend:  cfg.Backend,
		bus:      cfg.Bus,
		me:       cfg.Me,
		logger:   cfg.Logger,
		interval: cfg.RefreshInterval,
		now:      time.Now,
		touched:  map[string]uint64{},
	}
}

func sortConversations(list []types.Conversation) {
	slices.SortStableFunc(list, func(a, b types.Conversation) int {
		return b.ActiveAt().Compare(a.ActiveAt())
	})
}

func (l *ConversationList) changed() {
	l.bus.Publish(dispatch.TopicConversationsChanged, nil)
}

// Refresh replaces the whole list with the backend's. Calls made while one
// is in flight share its result.
// A conversation whose preview or unread counter changed locally after the
// fetch started keeps those local values, the snapshot may predate them.
func (l *ConversationList) Refresh(ctx context.Context) error {
	_, err, _ := l.refresh.Do("conversations", func() (any, error) {
		l.mu.Lock()
		start := l.version
		l.mu.Unlock()

		list, err := l.backend.Conversations(ctx, l.me.ID)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		for i := range list {
			if l.touched[list[i].ID] <= start {
				continue
			}
			if j := l.indexLocked(list[i].ID); j >= 0 {
				local := l.items[j]
				list[i].LastMessage = local.LastMessage
				list[i].LastMessageAt = local.LastMessageAt
				list[i].UnreadCount = local.UnreadCount
			}
		}
		sortConversations(list)
		l.items = list
		clear(l.touched)
		l.mu.Unlock()

		l.changed()
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("refresh conversations: %w", err)
	}
	return nil
}

// Run refreshes right away, then on every interval tick and whenever a peer
// publishes a refresh request. It returns when ctx is done.
func (l *ConversationList) Run(ctx context.Context) error {
	requests := make(chan struct{}, 1)
	unsubscribe := l.bus.Subscribe(dispatch.TopicConversationsRefresh, func(any) {
		select {
		case requests <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	refresh := func() {
		if err := l.Refresh(ctx); err != nil && ctx.Err() == nil {
			l.logger.Error("could not refresh conversations", "err", err)
		}
	}

	refresh()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresh()
		case <-requests:
			refresh()
		}
	}
}

func (l *ConversationList) indexLocked(conversationID string) int {
	return slices.IndexFunc(l.items, func(c types.Conversation) bool { return c.ID == conversationID })
}

func (l *ConversationList) touchLocked(conversationID string) {
	l.version++
	l.touched[conversationID] = l.version
}

// ApplyMessageToList makes msg the last message of its conversation and
// moves the conversation to the front. The unread counter only grows when
// the conversation is not the active one. An unknown conversation is left
// to the next refresh, which is requested right away.
func (l *ConversationList) ApplyMessageToList(msg types.Message, conversationID, activeConversationID string) {
	l.mu.Lock()
	i := l.indexLocked(conversationID)
	if i < 0 {
		l.mu.Unlock()
		l.logger.Debug("message for unknown conversation, requesting refresh", "conversation", conversationID)
		l.bus.Publish(dispatch.TopicConversationsRefresh, conversationID)
		return
	}

	c := l.items[i]
	at := msg.CreatedAt
	if at.IsZero() {
		at = l.now().UTC()
	}
	c.LastMessage = &types.MessagePreview{
		MessageID:      msg.ID,
		SenderID:       msg.Sender.ID,
		SenderName:     msg.Sender.Name,
		Content:        textutil.Preview(msg.Content, previewLength),
		HasAttachments: len(msg.Attachments) != 0,
		CreatedAt:      at,
	}
	c.LastMessageAt = &at
	if conversationID != activeConversationID {
		c.UnreadCount++
	}
	l.touchLocked(conversationID)

	l.items = slices.Delete(l.items, i, i+1)
	l.items = slices.Insert(l.items, 0, c)
	l.mu.Unlock()

	l.changed()
}

// ResetUnread zeroes the unread counter and returns the count it cleared.
func (l *ConversationList) ResetUnread(conversationID string) int {
	l.mu.Lock()
	var cleared int
	if i := l.indexLocked(conversationID); i >= 0 && l.items[i].UnreadCount != 0 {
		cleared = l.items[i].UnreadCount
		l.items[i].UnreadCount = 0
		l.touchLocked(conversationID)
	}
	l.mu.Unlock()

	if cleared != 0 {
		l.changed()
	}
	return cleared
}

// RestoreUnread adds n back to the unread counter after a failed mark read.
// Messages counted since the reset are kept.
func (l *ConversationList) RestoreUnread(conversationID string, n int) {
	if n <= 0 {
		return
	}

	l.mu.Lock()
	i := l.indexLocked(conversationID)
	if i >= 0 {
		l.items[i].UnreadCount += n
		l.touchLocked(conversationID)
	}
	l.mu.Unlock()

	if i >= 0 {
		l.changed()
	}
}

// ApplyStatus updates userID's status wherever they participate.
func (l *ConversationList) ApplyStatus(userID string, status types.UserStatus) {
	l.mu.Lock()
	var changed bool
	for i := range l.items {
		for j := range l.items[i].Participants {
			p := &l.items[i].Participants[j]
			if p.ID == userID && p.Status != status {
				p.Status = status
				changed = true
			}
		}
	}
	l.mu.Unlock()

	if changed {
		l.changed()
	}
}

// Conversations returns a copy of the ordered list.
func (l *ConversationList) Conversations() []types.Conversation {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]types.Conversation, len(l.items))
	for i, c := range l.items {
		out[i] = c.Clone()
	}
	return out
}

func (l *ConversationList) Conversation(conversationID string) (types.Conversation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexLocked(conversationID); i >= 0 {
		return l.items[i].Clone(), true
	}
	return types.Conversation{}, false
}

// CreateDirect opens (or reuses) the direct conversation with userID.
func (l *ConversationList) CreateDirect(ctx context.Context, userID string) (types.Conversation, error) {
	c, err := l.backend.CreateDirectChat(ctx, types.CreateDirectChat{UserID: userID}, l.me.ID)
	if err != nil {
		return c, fmt.Errorf("create direct chat: %w", err)
	}

	l.upsert(c)
	l.refreshAfterCreate(ctx)
	return c, nil
}

func (l *ConversationList) CreateGroup(ctx context.Context, name string, participants []string, description string) (types.Conversation, error) {
	in := types.CreateGroupChat{
		Name:         name,
		Participants: participants,
		Description:  description,
	}
	c, err := l.backend.CreateGroupChat(ctx, in, l.me.ID)
	if err != nil {
		return c, fmt.Errorf("create group chat: %w", err)
	}

	l.upsert(c)
	l.refreshAfterCreate(ctx)
	return c, nil
}

func (l *ConversationList) upsert(c types.Conversation) {
	l.mu.Lock()
	if i := l.indexLocked(c.ID); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
	l.items = slices.Insert(l.items, 0, c)
	l.mu.Unlock()

	l.changed()
}

func (l *ConversationList) refreshAfterCreate(ctx context.Context) {
	if err := l.Refresh(ctx); err != nil {
		l.logger.Warn("could not refresh conversations after create", "err", err)
	}
}
