package ingest

import (
	"fmt"

	"github.com/nakamauwu/chatsync/ptr"
	"github.com/nakamauwu/chatsync/textutil"
	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

const previewLength = 80

// Conversations decodes the conversation list. The unread counter is the
// one belonging to me.
func Conversations(raw []byte, me string) ([]types.Conversation, error) {
	v, err := parse(raw)
	if err != nil {
		return nil, err
	}

	list := v
	if v.IsObject() {
		list = first(v, "chats", "conversations")
	}

	var out []types.Conversation
	for _, item := range list.Array() {
		c, err := conversationFrom(item, me)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func Conversation(raw []byte, me string) (types.Conversation, error) {
	v, err := parse(raw)
	if err != nil {
		return types.Conversation{}, err
	}
	if c := first(v, "chat", "conversation"); c.IsObject() {
		v = c
	}
	return conversationFrom(v, me)
}

func conversationFrom(v gjson.Result, me string) (types.Conversation, error) {
	out := types.Conversation{
		ID:           first(v, "id", "_id").String(),
		Kind:         conversationKind(v),
		Name:         first(v, "name", "displayName").String(),
		Description:  v.Get("description").String(),
		Participants: users(v.Get("participants")),
		CreatedAt:    timeOf(v.Get("createdAt")),
	}
	if out.ID == "" {
		return out, fmt.Errorf("%w: conversation without id", ErrMalformed)
	}

	out.TaskID = ptr.NonZero(ref(first(v, "taskId", "task")))

	if lm := v.Get("lastMessage"); lm.IsObject() {
		preview := types.MessagePreview{
			MessageID:      first(lm, "id", "_id").String(),
			Content:        textutil.Preview(lm.Get("content").String(), previewLength),
			HasAttachments: len(lm.Get("attachments").Array()) != 0,
			CreatedAt:      timeOf(lm.Get("createdAt")),
		}
		sender := User(lm.Get("sender"))
		preview.SenderID = sender.ID
		preview.SenderName = sender.Name
		out.LastMessage = &preview
	}

	out.LastMessageAt = optionalTime(first(v, "lastMessageAt", "updatedAt"))
	if out.LastMessageAt == nil && out.LastMessage != nil && !out.LastMessage.CreatedAt.IsZero() {
		out.LastMessageAt = ptr.From(out.LastMessage.CreatedAt)
	}

	if n := v.Get("unreadCount"); n.Exists() {
		out.UnreadCount = int(n.Int())
	} else {
		for _, uc := range v.Get("unreadCounts").Array() {
			if ref(first(uc, "user", "userId")) == me {
				out.UnreadCount = int(uc.Get("count").Int())
				break
			}
		}
	}

	return out, nil
}

func conversationKind(v gjson.Result) types.ConversationKind {
	switch first(v, "kind", "type", "chatType").String() {
	case "group":
		return types.ConversationKindGroup
	case "task":
		return types.ConversationKindTask
	case "direct", "private":
		return types.ConversationKindDirect
	}
	if v.Get("isGroupChat").Bool() {
		return types.ConversationKindGroup
	}
	if first(v, "taskId", "task").Exists() {
		return types.ConversationKindTask
	}
	return types.ConversationKindDirect
}
