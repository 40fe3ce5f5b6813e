package types

import "time"

// ReceiptEvent reports a delivery or a read by another participant. An
// empty MessageID covers every message of the conversation up to At.
type ReceiptEvent struct {
	ConversationID string
	MessageID      string
	Receipt        Receipt
}

type DeletionEvent struct {
	ConversationID string
	MessageID      string
	ForEveryone    bool
}

type ReactionEvent struct {
	ConversationID string
	MessageID      string
	Reaction       Reaction
}

type TypingEvent struct {
	ConversationID string
	UserID         string
}

type StatusEvent struct {
	UserID   string
	Status   UserStatus
	LastSeen *time.Time
}

// MessageNotification is the lightweight push a user gets for a message in
// a conversation whose room it has not joined.
type MessageNotification struct {
	ConversationID string
	Message        Message
}

// UploadProgress is dispatched while an attachment upload is in flight.
type UploadProgress struct {
	ConversationID string
	TempID         string
	Percent        int
}
