package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/metrics"
	"github.com/nakamauwu/chatsync/transport/socket"
	"github.com/nakamauwu/chatsync/types"
)

const (
	DefaultBackgroundTimeout = time.Minute

	callbackID = "service"
)

type Config struct {
	Messages      MessageBackend
	Conversations ConversationBackend
	Attachments   AttachmentBackend
	Notifications NotificationBackend
	Emitter       Emitter
	Registry      *dispatch.Registry
	Objects       ObjectOpener
	Alerter       Alerter
	Me            types.User
	Logger        *slog.Logger
	Metrics       *metrics.Metrics

	PageSize        uint
	MaxFileSize     int64
	RefreshInterval time.Duration
	TypingQuiet     time.Duration
	TypingExpiry    time.Duration

	BaseCtx           context.Context
	BackgroundTimeout time.Duration
}

// Service owns the client side stores and feeds them every event the
// registry dispatches.
type Service struct {
	Messages      *MessageStore
	Conversations *ConversationList
	Presence      *Presence
	Attachments   *Attachments
	Notifications *NotificationFeed

	logger            *slog.Logger
	unregister        []func()
	baseCtx           context.Context
	backgroundTimeout time.Duration
	wg                sync.WaitGroup
	errs              chan error
}

func New(cfg *Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = dispatch.NewRegistry(cfg.Logger, cfg.Metrics)
	}
	if cfg.BaseCtx == nil {
		cfg.BaseCtx = context.Background()
	}
	if cfg.BackgroundTimeout <= 0 {
		cfg.BackgroundTimeout = DefaultBackgroundTimeout
	}

	bus := cfg.Registry.Bus()

	list := NewConversationList(ConversationListConfig{
		Backend:         cfg.Conversations,
		Bus:             bus,
		Me:              cfg.Me,
		Logger:          cfg.Logger,
		RefreshInterval: cfg.RefreshInterval,
	})
	messages := NewMessageStore(MessageStoreConfig{
		Backend:  cfg.Messages,
		Emitter:  cfg.Emitter,
		Bus:      bus,
		List:     list,
		Me:       cfg.Me,
		Logger:   cfg.Logger,
		Metrics:  cfg.Metrics,
		PageSize: cfg.PageSize,
	})

	svc := &Service{
		Messages:      messages,
		Conversations: list,
		Presence: NewPresence(PresenceConfig{
			Emitter:      cfg.Emitter,
			Bus:          bus,
			Statuses:     list,
			Me:           cfg.Me,
			Logger:       cfg.Logger,
			TypingQuiet:  cfg.TypingQuiet,
			TypingExpiry: cfg.TypingExpiry,
		}),
		Attachments: NewAttachments(AttachmentsConfig{
			Backend:     cfg.Attachments,
			Messages:    messages,
			Registry:    cfg.Registry,
			Objects:     cfg.Objects,
			MaxFileSize: cfg.MaxFileSize,
			Logger:      cfg.Logger,
		}),
		Notifications: NewNotificationFeed(NotificationFeedConfig{
			Backend: cfg.Notifications,
			Bus:     bus,
			Alerter: cfg.Alerter,
			Logger:  cfg.Logger,
		}),

		logger:            cfg.Logger,
		baseCtx:           cfg.BaseCtx,
		backgroundTimeout: cfg.BackgroundTimeout,
		errs:              make(chan error, 1),
	}

	svc.subscribe(cfg.Registry)
	return svc
}

func (svc *Service) subscribe(r *dispatch.Registry) {
	on := func(_ string, unregister func()) {
		svc.unregister = append(svc.unregister, unregister)
	}

	on(dispatch.On(r, dispatch.CategoryNewMessage, callbackID, func(msg types.Message, _ string) {
		svc.Messages.ApplyIncomingMessage(msg)
	}))
	on(dispatch.On(r, dispatch.CategoryMessageDelivered, callbackID, func(ev types.ReceiptEvent, _ string) {
		svc.Messages.ApplyDelivered(ev)
	}))
	on(dispatch.On(r, dispatch.CategoryMessageRead, callbackID, func(ev types.ReceiptEvent, _ string) {
		svc.Messages.ApplyReadBy(ev)
	}))
	on(dispatch.On(r, dispatch.CategoryMessageDeleted, callbackID, func(ev types.DeletionEvent, _ string) {
		svc.Messages.MarkDeleted(ev.MessageID)
	}))
	on(dispatch.On(r, dispatch.CategoryReactionAdded, callbackID, func(ev types.ReactionEvent, _ string) {
		svc.Messages.OnReactionAdded(ev)
	}))
	on(dispatch.On(r, dispatch.CategoryReactionRemoved, callbackID, func(ev types.ReactionEvent, _ string) {
		svc.Messages.OnReactionRemoved(ev)
	}))
	on(dispatch.On(r, dispatch.CategoryTypingStart, callbackID, func(ev types.TypingEvent, _ string) {
		svc.Presence.OnRemoteTyping(ev.UserID, ev.ConversationID, true)
	}))
	on(dispatch.On(r, dispatch.CategoryTypingStop, callbackID, func(ev types.TypingEvent, _ string) {
		svc.Presence.OnRemoteTyping(ev.UserID, ev.ConversationID, false)
	}))
	on(dispatch.On(r, dispatch.CategoryUserStatusChange, callbackID, func(ev types.StatusEvent, _ string) {
		svc.Presence.OnStatusChange(ev.UserID, ev.Status)
	}))
	on(dispatch.On(r, dispatch.CategoryPresenceBulk, callbackID, func(evs []types.StatusEvent, _ string) {
		svc.Presence.OnPresenceBulk(evs)
	}))
	on(dispatch.On(r, dispatch.CategoryMessageNotification, callbackID, func(n types.MessageNotification, _ string) {
		svc.onMessageNotification(r.Bus(), n)
	}))
	on(dispatch.On(r, dispatch.CategoryNotification, callbackID, func(n types.Notification, _ string) {
		svc.Notifications.OnPush(n)
	}))

	svc.unregister = append(svc.unregister, r.Bus().Subscribe(dispatch.TopicSessionState, func(payload any) {
		if state, ok := payload.(socket.State); ok && state == socket.StateConnected {
			svc.background(svc.resync)
		}
	}))
}

// onMessageNotification handles the push for a conversation whose room is
// not joined. Without the message itself only the list can be repaired.
func (svc *Service) onMessageNotification(bus *dispatch.Bus, n types.MessageNotification) {
	if n.Message.ID == "" {
		bus.Publish(dispatch.TopicConversationsRefresh, n.ConversationID)
		return
	}

	msg := n.Message
	if msg.ConversationID == "" {
		msg.ConversationID = n.ConversationID
	}
	svc.Messages.ApplyIncomingMessage(msg)
}

// resync repairs what was missed while the connection was down.
func (svc *Service) resync(ctx context.Context) error {
	if err := svc.Conversations.Refresh(ctx); err != nil {
		return err
	}

	if active := svc.Messages.Active(); active != "" {
		if _, err := svc.Messages.LoadHistory(ctx, active, 1); err != nil {
			return err
		}
	}

	return nil
}

// Run keeps the conversation list fresh until ctx is done.
func (svc *Service) Run(ctx context.Context) error {
	return svc.Conversations.Run(ctx)
}

func (svc *Service) Errs() <-chan error {
	return svc.errs
}

func (svc *Service) Close() error {
	for _, unregister := range svc.unregister {
		unregister()
	}
	svc.Presence.Close()
	svc.wg.Wait()
	close(svc.errs)
	return nil
}

func (svc *Service) background(fn func(ctx context.Context) error) {
	svc.wg.Go(func() {
		defer func() {
			if rcv := recover(); rcv != nil {
				select {
				case svc.errs <- fmt.Errorf("service background panic: %v", rcv):
				default:
				}
			}
		}()

		ctx, cancel := context.WithTimeout(svc.baseCtx, svc.backgroundTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			select {
			case svc.errs <- fmt.Errorf("service background error: %w", err):
			default:
			}
		}
	})
}
