package service

import (
	"context"
	"io"

	"github.com/nakamauwu/chatsync/types"
)

//go:generate go tool moq -out backend_mock_test.go . MessageBackend ConversationBackend AttachmentBackend NotificationBackend Emitter

// MessageBackend is the part of the REST boundary the message store uses.
type MessageBackend interface {
	Messages(ctx context.Context, in types.ListMessages) (types.Page[types.Message], error)
	CreateMessage(ctx context.Context, in types.CreateMessage) (types.Message, error)
	MarkRead(ctx context.Context, conversationID string) error
	AddReaction(ctx context.Context, conversationID, messageID, emoji string) error
	RemoveReaction(ctx context.Context, conversationID, messageID string) error
	DeleteMessage(ctx context.Context, in types.DeleteMessage) error
}

type ConversationBackend interface {
	Conversations(ctx context.Context, me string) ([]types.Conversation, error)
	CreateDirectChat(ctx context.Context, in types.CreateDirectChat, me string) (types.Conversation, error)
	CreateGroupChat(ctx context.Context, in types.CreateGroupChat, me string) (types.Conversation, error)
}

type AttachmentBackend interface {
	CreateMessageWithFiles(ctx context.Context, in types.CreateMessage, files []types.Upload, progress func(sent, total int64)) (types.Message, error)
	Download(ctx context.Context, fileURL string) (io.ReadCloser, int64, error)
}

type NotificationBackend interface {
	Notifications(ctx context.Context, in types.ListNotifications) (types.Page[types.Notification], error)
	UnreadNotificationsCount(ctx context.Context) (int, error)
	ReadNotification(ctx context.Context, notificationID string) error
	ReadAllNotifications(ctx context.Context) error
	DeleteNotification(ctx context.Context, notificationID string) error
	ClearNotifications(ctx context.Context) error
}

// Emitter sends outbound events over the push connection.
type Emitter interface {
	Emit(ctx context.Context, event string, payload any) error
}
