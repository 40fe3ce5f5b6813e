package http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/nakamauwu/chatsync/ingest"
	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

// Conversations lists every conversation of the credential holder. The
// unread counter on each one is me's.
func (c *Client) Conversations(ctx context.Context, me string) ([]types.Conversation, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "chats/user/chats", nil, nil)
	if err != nil {
		return nil, err
	}

	var out []types.Conversation
	err = c.do(req, func(b []byte) error {
		out, err = ingest.Conversations(b, me)
		return err
	})
	return out, err
}

func (c *Client) CreateDirectChat(ctx context.Context, in types.CreateDirectChat, me string) (types.Conversation, error) {
	var out types.Conversation

	if err := in.Validate(); err != nil {
		return out, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "chats/direct", nil, in)
	if err != nil {
		return out, err
	}

	err = c.do(req, func(b []byte) error {
		out, err = ingest.Conversation(b, me)
		return err
	})
	return out, err
}

func (c *Client) CreateGroupChat(ctx context.Context, in types.CreateGroupChat, me string) (types.Conversation, error) {
	var out types.Conversation

	if err := in.Validate(); err != nil {
		return out, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "chats/group", nil, in)
	if err != nil {
		return out, err
	}

	err = c.do(req, func(b []byte) error {
		out, err = ingest.Conversation(b, me)
		return err
	})
	return out, err
}

// Messages fetches one page of history. Page 1 is the most recent one and
// items come oldest first within a page.
func (c *Client) Messages(ctx context.Context, in types.ListMessages) (types.Page[types.Message], error) {
	var out types.Page[types.Message]

	if err := in.Validate(); err != nil {
		return out, err
	}

	q := url.Values{}
	q.Set("page", strconv.FormatUint(uint64(in.PageArgs.Page), 10))
	q.Set("limit", strconv.FormatUint(uint64(in.PageArgs.Limit), 10))

	req, err := c.newRequest(ctx, http.MethodGet, "chats/"+url.PathEscape(in.ConversationID)+"/messages", q, nil)
	if err != nil {
		return out, err
	}

	out.Page = in.PageArgs.Page
	out.Limit = in.PageArgs.Limit
	err = c.do(req, func(b []byte) error {
		list, err := ingest.Messages(b, in.ConversationID)
		if err != nil {
			return err
		}
		for _, skipped := range list.Skipped {
			_ = level.Warn(c.logger).Log("msg", "skipping malformed message", "conversation", in.ConversationID, "err", skipped)
		}
		out.Items, out.HasMore = list.Items, list.HasMore
		return nil
	})
	return out, err
}

// CreateMessage sends a text message. The idempotency key is derived from
// the temp id, so resending the same pending message is not stored twice.
func (c *Client) CreateMessage(ctx context.Context, in types.CreateMessage) (types.Message, error) {
	var out types.Message

	if err := in.Validate(); err != nil {
		return out, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "chats/"+url.PathEscape(in.ConversationID)+"/messages", nil, in)
	if err != nil {
		return out, err
	}

	req.Header.Set("Idempotency-Key", IdempotencyKey(in))

	err = c.do(req, decodeMessage(&out, in.ConversationID))
	return out, err
}

var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("chatsync/messages"))

// IdempotencyKey is stable for a conversation and temp id. A message without
// a temp id gets a random key.
func IdempotencyKey(in types.CreateMessage) string {
	if in.TempID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(idempotencyNamespace, []byte(in.ConversationID+"/"+in.TempID)).String()
}

func decodeMessage(out *types.Message, conversationID string) func([]byte) error {
	return func(b []byte) error {
		raw := b
		if m := gjson.GetBytes(b, "message"); m.IsObject() {
			raw = []byte(m.Raw)
		}
		m, err := ingest.MessageFor(raw, conversationID)
		*out = m
		return err
	}
}

func (c *Client) MarkRead(ctx context.Context, conversationID string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "chats/"+url.PathEscape(conversationID)+"/read", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) AddReaction(ctx context.Context, conversationID, messageID, emoji string) error {
	body := struct {
		Emoji string `json:"emoji"`
	}{Emoji: emoji}

	req, err := c.newRequest(ctx, http.MethodPost, reactionsPath(conversationID, messageID), nil, body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) RemoveReaction(ctx context.Context, conversationID, messageID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, reactionsPath(conversationID, messageID), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func reactionsPath(conversationID, messageID string) string {
	return "chats/" + url.PathEscape(conversationID) + "/messages/" + url.PathEscape(messageID) + "/reactions"
}

func (c *Client) DeleteMessage(ctx context.Context, in types.DeleteMessage) error {
	if err := in.Validate(); err != nil {
		return err
	}

	q := url.Values{}
	q.Set("forEveryone", strconv.FormatBool(in.ForEveryone))

	path := "chats/" + url.PathEscape(in.ConversationID) + "/messages/" + url.PathEscape(in.MessageID)
	req, err := c.newRequest(ctx, http.MethodDelete, path, q, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
