package ingest

import (
	"fmt"

	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

func Message(raw []byte) (types.Message, error) {
	v, err := parse(raw)
	if err != nil {
		return types.Message{}, err
	}
	return messageFrom(v, "")
}

// MessageFor decodes a message that belongs to conversationID when the
// payload leaves the conversation implicit.
func MessageFor(raw []byte, conversationID string) (types.Message, error) {
	v, err := parse(raw)
	if err != nil {
		return types.Message{}, err
	}
	return messageFrom(v, conversationID)
}

// messageFrom falls back to conversation when the message does not carry
// its own conversation id.
func messageFrom(v gjson.Result, conversation string) (types.Message, error) {
	out := types.Message{
		ID:             first(v, "id", "_id").String(),
		TempID:         v.Get("tempId").String(),
		ConversationID: ref(first(v, "conversationId", "chatId", "chat")),
		Sender:         User(v.Get("sender")),
		Content:        v.Get("content").String(),
		CreatedAt:      timeOf(v.Get("createdAt")),
		IsDeleted:      first(v, "isDeleted", "deleted").Bool(),
		State:          types.MessageStateConfirmed,
	}

	if out.ConversationID == "" {
		out.ConversationID = conversation
	}

	if out.ID == "" {
		return out, fmt.Errorf("%w: message without id", ErrMalformed)
	}
	if out.ConversationID == "" {
		return out, fmt.Errorf("%w: message %s without conversation", ErrMalformed, out.ID)
	}

	for _, a := range v.Get("attachments").Array() {
		out.Attachments = append(out.Attachments, types.Attachment{
			FileName: a.Get("fileName").String(),
			FileURL:  a.Get("fileUrl").String(),
			FileType: a.Get("fileType").String(),
			FileSize: a.Get("fileSize").Int(),
		})
	}

	for _, r := range v.Get("reactions").Array() {
		reaction := types.Reaction{
			UserID:    ref(first(r, "userId", "user")),
			Emoji:     r.Get("emoji").String(),
			CreatedAt: timeOf(r.Get("createdAt")),
		}
		if reaction.UserID == "" || reaction.Emoji == "" {
			continue
		}
		// one reaction per user, the last one listed wins
		out.Reactions = upsertReaction(out.Reactions, reaction)
	}

	out.ReadBy = receipts(v.Get("readBy"), "readAt")
	out.DeliveredTo = receipts(v.Get("deliveredTo"), "deliveredAt")

	return out, nil
}

func upsertReaction(list []types.Reaction, r types.Reaction) []types.Reaction {
	for i := range list {
		if list[i].UserID == r.UserID {
			list[i] = r
			return list
		}
	}
	return append(list, r)
}

func receipts(v gjson.Result, atField string) []types.Receipt {
	var out []types.Receipt
	seen := map[string]struct{}{}
	for _, item := range v.Array() {
		r := types.Receipt{
			UserID: ref(first(item, "userId", "user")),
			At:     timeOf(first(item, atField, "at", "timestamp")),
		}
		if r.UserID == "" {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// MessageList is a decoded history page. Skipped holds why each item that
// could not be decoded was left out; the rest of the page is kept.
type MessageList struct {
	Items   []types.Message
	HasMore bool
	Skipped []error
}

// Messages decodes the history response: {"messages": [...], "hasMore": bool}.
func Messages(raw []byte, conversationID string) (MessageList, error) {
	var out MessageList

	v, err := parse(raw)
	if err != nil {
		return out, err
	}

	for i, item := range v.Get("messages").Array() {
		m, err := messageFrom(item, conversationID)
		if err != nil {
			out.Skipped = append(out.Skipped, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		out.Items = append(out.Items, m)
	}
	out.HasMore = v.Get("hasMore").Bool()
	return out, nil
}
