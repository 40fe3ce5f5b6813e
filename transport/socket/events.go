package socket

// Outbound event names.
const (
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventSendMessage    = "send-message"
	EventTypingStart    = "typing-start"
	EventTypingStop     = "typing-stop"
	EventAddReaction    = "add-reaction"
	EventRemoveReaction = "remove-reaction"
	EventMarkRead       = "mark-read"
	EventDeleteMessage  = "delete-message"
	EventGetPresence    = "get-presence"
)

// SendMessagePayload announces a message the backend already stored so
// room members receive it without polling.
type SendMessagePayload struct {
	ConversationID string `json:"chatId"`
	Message        any    `json:"message"`
}

type TypingPayload struct {
	ConversationID string `json:"chatId"`
	UserID         string `json:"userId"`
}

type ReactionPayload struct {
	ConversationID string `json:"chatId"`
	MessageID      string `json:"messageId"`
	Emoji          string `json:"emoji,omitempty"`
}

type MarkReadPayload struct {
	ConversationID string `json:"chatId"`
	UserID         string `json:"userId"`
	MessageID      string `json:"messageId,omitempty"`
}

type DeleteMessagePayload struct {
	ConversationID string `json:"chatId"`
	MessageID      string `json:"messageId"`
	ForEveryone    bool   `json:"forEveryone"`
}
