package types

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nakamauwu/chatsync/validator"
)

const maxContentLength = 4000

type Message struct {
	ID             string       `json:"id"`
	TempID         string       `json:"tempId,omitempty"`
	ConversationID string       `json:"conversationId"`
	Sender         User         `json:"sender"`
	Content        string       `json:"content"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	IsDeleted      bool         `json:"isDeleted,omitempty"`
	Reactions      []Reaction   `json:"reactions,omitempty"`
	ReadBy         []Receipt    `json:"readBy,omitempty"`
	DeliveredTo    []Receipt    `json:"deliveredTo,omitempty"`
	State          MessageState `json:"-"`

	// Err is the failure kept on a failed optimistic send.
	Err error `json:"-"`
	// Seq is the local arrival sequence, the tie-break for equal CreatedAt.
	Seq uint64 `json:"-"`
}

type MessageState string

const (
	MessageStatePending   MessageState = "pending"
	MessageStateConfirmed MessageState = "confirmed"
	MessageStateFailed    MessageState = "failed"
)

func (s MessageState) String() string {
	return string(s)
}

// VisibleContent hides the content of deleted messages from rendering while
// the message keeps it in memory.
func (m Message) VisibleContent() string {
	if m.IsDeleted {
		return ""
	}
	return m.Content
}

func (m Message) ReactionBy(userID string) (Reaction, bool) {
	for _, r := range m.Reactions {
		if r.UserID == userID {
			return r, true
		}
	}
	return Reaction{}, false
}

func (m Message) ReadByUser(userID string) bool {
	return slices.ContainsFunc(m.ReadBy, func(r Receipt) bool { return r.UserID == userID })
}

func (m Message) DeliveredToUser(userID string) bool {
	return slices.ContainsFunc(m.DeliveredTo, func(r Receipt) bool { return r.UserID == userID })
}

func (m Message) Clone() Message {
	m.Attachments = slices.Clone(m.Attachments)
	m.Reactions = slices.Clone(m.Reactions)
	m.ReadBy = slices.Clone(m.ReadBy)
	m.DeliveredTo = slices.Clone(m.DeliveredTo)
	return m
}

// Before reports the total order messages are kept in.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.Seq < other.Seq
}

type Reaction struct {
	UserID    string    `json:"userId"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

type Receipt struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

type CreateMessage struct {
	ConversationID string `json:"-"`
	Content        string `json:"content"`
	TempID         string `json:"tempId,omitempty"`

	hasAttachments bool
}

func (in *CreateMessage) SetHasAttachments(v bool) {
	in.hasAttachments = v
}

func (in CreateMessage) HasAttachments() bool {
	return in.hasAttachments
}

func (in *CreateMessage) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	v.Check(in.ConversationID != "", "ConversationID", "Conversation ID is required")
	v.Check(in.Content != "" || in.hasAttachments, "Content", "Content is required")
	v.Check(utf8.RuneCountInString(in.Content) <= maxContentLength, "Content", "Content is too long")

	return v.AsError()
}

type ListMessages struct {
	ConversationID string
	PageArgs       PageArgs
}

func (in *ListMessages) Validate() error {
	if in.ConversationID == "" {
		v := validator.New()
		v.AddError("ConversationID", "Conversation ID is required")
		return v.AsError()
	}
	return in.PageArgs.Validate()
}

type DeleteMessage struct {
	ConversationID string
	MessageID      string
	ForEveryone    bool
}

func (in *DeleteMessage) Validate() error {
	v := validator.New()

	v.Check(in.ConversationID != "", "ConversationID", "Conversation ID is required")
	v.Check(in.MessageID != "", "MessageID", "Message ID is required")

	return v.AsError()
}
