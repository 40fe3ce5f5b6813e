package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

// Inbound event names.
const (
	EventNewMessage          = "new-message"
	EventMessageDelivered    = "message-delivered"
	EventMessageReadBy       = "message-read-by"
	EventMessageDeleted      = "message-deleted"
	EventReactionAdded       = "message-reaction-added"
	EventReactionRemoved     = "message-reaction-removed"
	EventUserTypingStart     = "user-typing-start"
	EventUserTypingStop      = "user-typing-stop"
	EventUserStatusChange    = "user-status-change"
	EventPresenceBulk        = "presence-bulk"
	EventMessageNotification = "message-notification"
	EventNotification        = "notification"
)

// Decoded is an inbound event ready for the registry.
type Decoded struct {
	Category dispatch.Category
	Subtype  string
	Payload  any
}

var ErrUnknownEvent = errors.New("unknown event")

// Decode maps an inbound event and its raw payload to a registry category
// with a typed payload.
func Decode(event string, data []byte) (Decoded, error) {
	switch event {
	case EventNewMessage:
		m, err := newMessage(data)
		return Decoded{Category: dispatch.CategoryNewMessage, Subtype: dispatch.SubtypeNew, Payload: m}, err
	case EventMessageDelivered:
		r, err := receiptEvent(data, "deliveredAt")
		return Decoded{Category: dispatch.CategoryMessageDelivered, Payload: r}, err
	case EventMessageReadBy:
		r, err := receiptEvent(data, "readAt")
		return Decoded{Category: dispatch.CategoryMessageRead, Payload: r}, err
	case EventMessageDeleted:
		d, err := deletionEvent(data)
		return Decoded{Category: dispatch.CategoryMessageDeleted, Payload: d}, err
	case EventReactionAdded:
		r, err := reactionEvent(data)
		return Decoded{Category: dispatch.CategoryReactionAdded, Subtype: dispatch.SubtypeAdd, Payload: r}, err
	case EventReactionRemoved:
		r, err := reactionEvent(data)
		return Decoded{Category: dispatch.CategoryReactionRemoved, Subtype: dispatch.SubtypeRemove, Payload: r}, err
	case EventUserTypingStart:
		t, err := typingEvent(data)
		return Decoded{Category: dispatch.CategoryTypingStart, Subtype: "true", Payload: t}, err
	case EventUserTypingStop:
		t, err := typingEvent(data)
		return Decoded{Category: dispatch.CategoryTypingStop, Subtype: "false", Payload: t}, err
	case EventUserStatusChange:
		s, err := statusEvent(data)
		return Decoded{Category: dispatch.CategoryUserStatusChange, Subtype: dispatch.SubtypeChange, Payload: s}, err
	case EventPresenceBulk:
		s, err := presenceBulk(data)
		return Decoded{Category: dispatch.CategoryPresenceBulk, Subtype: dispatch.SubtypeBulk, Payload: s}, err
	case EventMessageNotification:
		n, err := messageNotification(data)
		return Decoded{Category: dispatch.CategoryMessageNotification, Payload: n}, err
	case EventNotification:
		n, err := Notification(data)
		return Decoded{Category: dispatch.CategoryNotification, Subtype: dispatch.SubtypeNew, Payload: n}, err
	}
	return Decoded{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
}

// newMessage accepts both a bare message and the {chatId, message} wrapper
// the send-message broadcast uses.
func newMessage(data []byte) (types.Message, error) {
	v, err := parse(data)
	if err != nil {
		return types.Message{}, err
	}
	if inner := v.Get("message"); inner.IsObject() {
		return messageFrom(inner, conversationID(v))
	}
	return messageFrom(v, "")
}

func conversationID(v gjson.Result) string {
	return ref(first(v, "conversationId", "chatId", "chat"))
}

func receiptEvent(data []byte, atField string) (types.ReceiptEvent, error) {
	v, err := parse(data)
	if err != nil {
		return types.ReceiptEvent{}, err
	}
	out := types.ReceiptEvent{
		ConversationID: conversationID(v),
		MessageID:      ref(first(v, "messageId", "message")),
		Receipt: types.Receipt{
			UserID: ref(first(v, "userId", "user", "readBy")),
			At:     timeOf(first(v, atField, "at", "timestamp")),
		},
	}
	if out.Receipt.At.IsZero() {
		out.Receipt.At = time.Now().UTC()
	}
	if out.ConversationID == "" || out.Receipt.UserID == "" {
		return out, fmt.Errorf("%w: receipt without conversation or user", ErrMalformed)
	}
	return out, nil
}

func deletionEvent(data []byte) (types.DeletionEvent, error) {
	v, err := parse(data)
	if err != nil {
		return types.DeletionEvent{}, err
	}
	out := types.DeletionEvent{
		ConversationID: conversationID(v),
		MessageID:      ref(first(v, "messageId", "message")),
		ForEveryone:    v.Get("forEveryone").Bool(),
	}
	if out.MessageID == "" {
		return out, fmt.Errorf("%w: deletion without message", ErrMalformed)
	}
	return out, nil
}

func reactionEvent(data []byte) (types.ReactionEvent, error) {
	v, err := parse(data)
	if err != nil {
		return types.ReactionEvent{}, err
	}
	out := types.ReactionEvent{
		ConversationID: conversationID(v),
		MessageID:      ref(first(v, "messageId", "message")),
		Reaction: types.Reaction{
			UserID:    ref(first(v, "userId", "user")),
			Emoji:     first(v, "emoji", "reaction").String(),
			CreatedAt: timeOf(v.Get("createdAt")),
		},
	}
	if out.MessageID == "" || out.Reaction.UserID == "" {
		return out, fmt.Errorf("%w: reaction without message or user", ErrMalformed)
	}
	return out, nil
}

func typingEvent(data []byte) (types.TypingEvent, error) {
	v, err := parse(data)
	if err != nil {
		return types.TypingEvent{}, err
	}
	out := types.TypingEvent{
		ConversationID: conversationID(v),
		UserID:         ref(first(v, "userId", "user")),
	}
	if out.ConversationID == "" || out.UserID == "" {
		return out, fmt.Errorf("%w: typing without conversation or user", ErrMalformed)
	}
	return out, nil
}

func statusFrom(v gjson.Result) types.StatusEvent {
	out := types.StatusEvent{
		UserID:   ref(first(v, "userId", "user", "id", "_id")),
		Status:   types.UserStatusOffline,
		LastSeen: optionalTime(v.Get("lastSeen")),
	}
	switch s := first(v, "status", "onlineStatus", "isOnline"); s.Type {
	case gjson.True:
		out.Status = types.UserStatusOnline
	case gjson.String:
		if st := types.UserStatus(s.String()); st.Valid() {
			out.Status = st
		}
	}
	return out
}

func statusEvent(data []byte) (types.StatusEvent, error) {
	v, err := parse(data)
	if err != nil {
		return types.StatusEvent{}, err
	}
	out := statusFrom(v)
	if out.UserID == "" {
		return out, fmt.Errorf("%w: status without user", ErrMalformed)
	}
	return out, nil
}

// presenceBulk accepts a list of statuses or an object keyed by user id.
func presenceBulk(data []byte) ([]types.StatusEvent, error) {
	v, err := parse(data)
	if err != nil {
		return nil, err
	}

	var out []types.StatusEvent
	if v.IsArray() {
		for _, item := range v.Array() {
			if s := statusFrom(item); s.UserID != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}

	v.ForEach(func(key, value gjson.Result) bool {
		var s types.StatusEvent
		if value.IsObject() {
			s = statusFrom(value)
		} else {
			s = statusFrom(gjson.Parse(fmt.Sprintf(`{"status":%s}`, value.Raw)))
		}
		s.UserID = key.String()
		out = append(out, s)
		return true
	})
	return out, nil
}

func messageNotification(data []byte) (types.MessageNotification, error) {
	v, err := parse(data)
	if err != nil {
		return types.MessageNotification{}, err
	}
	out := types.MessageNotification{ConversationID: conversationID(v)}
	if inner := v.Get("message"); inner.IsObject() {
		m, err := messageFrom(inner, out.ConversationID)
		if err != nil {
			return out, err
		}
		out.Message = m
		if out.ConversationID == "" {
			out.ConversationID = m.ConversationID
		}
	}
	if out.ConversationID == "" {
		return out, fmt.Errorf("%w: message notification without conversation", ErrMalformed)
	}
	return out, nil
}
