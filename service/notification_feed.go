package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/types"
	goerrs "github.com/nicolasparada/go-errs"
)

// Alerter surfaces a pushed notification to the user, like a desktop
// notification would.
type Alerter interface {
	Alert(n types.Notification)
}

type AlerterFunc func(n types.Notification)

func (f AlerterFunc) Alert(n types.Notification) { f(n) }

type NotificationFeedConfig struct {
	Backend NotificationBackend
	Bus     *dispatch.Bus
	Alerter Alerter
	Logger  *slog.Logger
}

// NotificationFeed keeps the loaded notifications, newest first, and the
// unread counter.
type NotificationFeed struct {
	backend NotificationBackend
	bus     *dispatch.Bus
	alerter Alerter
	logger  *slog.Logger

	mu      sync.Mutex
	items   []types.Notification
	unread  int
	hasMore bool
}

func NewNotificationFeed(cfg NotificationFeedConfig) *NotificationFeed {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Bus == nil {
		cfg.Bus = dispatch.NewBus(cfg.Logger)
	}
	return &NotificationFeed{
		backend: cfg.Backend,
		bus:     cfg.Bus,
		alerter: cfg.Alerter,
		logger:  cfg.Logger,
	}
}

func (f *NotificationFeed) changed() {
	f.bus.Publish(dispatch.TopicNotificationsChanged, nil)
}

func (f *NotificationFeed) indexLocked(notificationID string) int {
	return slices.IndexFunc(f.items, func(n types.Notification) bool { return n.ID == notificationID })
}

func countUnread(list []types.Notification) int {
	var n int
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}

// Fetch loads one page. The first page replaces the feed and recomputes
// the unread counter from it; later pages are appended.
func (f *NotificationFeed) Fetch(ctx context.Context, page, limit uint) (bool, error) {
	in := types.ListNotifications{PageArgs: types.PageArgs{Page: page, Limit: limit}}
	if err := in.Validate(); err != nil {
		return false, err
	}

	p, err := f.backend.Notifications(ctx, in)
	if err != nil {
		return false, fmt.Errorf("fetch notifications: %w", err)
	}

	f.mu.Lock()
	if page <= 1 {
		f.items = slices.Clone(p.Items)
		f.unread = countUnread(f.items)
	} else {
		for _, n := range p.Items {
			if f.indexLocked(n.ID) < 0 {
				f.items = append(f.items, n)
				if !n.Read {
					f.unread++
				}
			}
		}
	}
	f.hasMore = p.HasMore
	f.mu.Unlock()

	f.changed()
	return p.HasMore, nil
}

// RefreshUnreadCount takes the server's count, which also covers pages not
// loaded yet.
func (f *NotificationFeed) RefreshUnreadCount(ctx context.Context) (int, error) {
	n, err := f.backend.UnreadNotificationsCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh unread notifications count: %w", err)
	}

	f.mu.Lock()
	changed := f.unread != n
	f.unread = max(n, 0)
	f.mu.Unlock()

	if changed {
		f.changed()
	}
	return n, nil
}

// Rollbacks below only undo what the failed call changed. Notifications
// pushed while the request was in flight stay.

// unmarkRead flips ids back to unread and adds unread back to the counter.
func (f *NotificationFeed) unmarkRead(ids []string, unread int) {
	f.mu.Lock()
	for _, id := range ids {
		if i := f.indexLocked(id); i >= 0 {
			f.items[i].Read = false
		}
	}
	f.unread += unread
	f.mu.Unlock()

	f.changed()
}

func (f *NotificationFeed) MarkAsRead(ctx context.Context, notificationID string) error {
	f.mu.Lock()
	i := f.indexLocked(notificationID)
	if i < 0 {
		f.mu.Unlock()
		return goerrs.NotFoundError("notification not found")
	}
	if f.items[i].Read {
		f.mu.Unlock()
		return nil
	}
	f.items[i].Read = true
	decremented := min(f.unread, 1)
	f.unread -= decremented
	f.mu.Unlock()

	f.changed()

	if err := f.backend.ReadNotification(ctx, notificationID); err != nil {
		f.unmarkRead([]string{notificationID}, decremented)
		return fmt.Errorf("mark notification as read: %w", err)
	}
	return nil
}

func (f *NotificationFeed) MarkAllAsRead(ctx context.Context) error {
	f.mu.Lock()
	var flipped []string
	for i := range f.items {
		if !f.items[i].Read {
			f.items[i].Read = true
			flipped = append(flipped, f.items[i].ID)
		}
	}
	prevUnread := f.unread
	f.unread = 0
	f.mu.Unlock()

	f.changed()

	if err := f.backend.ReadAllNotifications(ctx); err != nil {
		f.unmarkRead(flipped, prevUnread)
		return fmt.Errorf("mark all notifications as read: %w", err)
	}
	return nil
}

func (f *NotificationFeed) Delete(ctx context.Context, notificationID string) error {
	f.mu.Lock()
	i := f.indexLocked(notificationID)
	if i < 0 {
		f.mu.Unlock()
		return goerrs.NotFoundError("notification not found")
	}
	deleted := f.items[i]
	var decremented int
	if !deleted.Read {
		decremented = min(f.unread, 1)
		f.unread -= decremented
	}
	f.items = slices.Delete(f.items, i, i+1)
	f.mu.Unlock()

	f.changed()

	if err := f.backend.DeleteNotification(ctx, notificationID); err != nil {
		f.reinsert(deleted, i, decremented)
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// reinsert puts n back near index i, shifted by whatever was pushed on top
// since it was removed.
func (f *NotificationFeed) reinsert(n types.Notification, i, unread int) {
	f.mu.Lock()
	if f.indexLocked(n.ID) < 0 {
		i = min(i, len(f.items))
		for i < len(f.items) && f.items[i].CreatedAt.After(n.CreatedAt) {
			i++
		}
		f.items = slices.Insert(f.items, i, n)
		f.unread += unread
	}
	f.mu.Unlock()

	f.changed()
}

func (f *NotificationFeed) ClearAll(ctx context.Context) error {
	f.mu.Lock()
	cleared, prevUnread := f.items, f.unread
	f.items = nil
	f.unread = 0
	f.mu.Unlock()

	f.changed()

	if err := f.backend.ClearNotifications(ctx); err != nil {
		f.mu.Lock()
		for _, n := range cleared {
			if f.indexLocked(n.ID) < 0 {
				f.items = append(f.items, n)
			}
		}
		f.unread += prevUnread
		f.mu.Unlock()

		f.changed()
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// OnPush puts a pushed notification at the top of the feed.
func (f *NotificationFeed) OnPush(n types.Notification) {
	f.mu.Lock()
	if f.indexLocked(n.ID) >= 0 {
		f.mu.Unlock()
		return
	}
	f.items = slices.Insert(f.items, 0, n)
	if !n.Read {
		f.unread++
	}
	f.mu.Unlock()

	f.changed()

	if f.alerter != nil {
		f.alerter.Alert(n)
	}
}

// Notifications returns a copy of the feed, newest first.
func (f *NotificationFeed) Notifications() []types.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

func (f *NotificationFeed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

func (f *NotificationFeed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}
