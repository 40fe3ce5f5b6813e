package types

import (
	"slices"
	"strings"
	"time"

	"github.com/nakamauwu/chatsync/validator"
)

type Conversation struct {
	ID            string           `json:"id"`
	Kind          ConversationKind `json:"kind"`
	Name          string           `json:"name,omitempty"`
	Description   string           `json:"description,omitempty"`
	TaskID        *string          `json:"taskId,omitempty"`
	Participants  []User           `json:"participants"`
	LastMessage   *MessagePreview  `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time       `json:"lastMessageAt,omitempty"`
	UnreadCount   int              `json:"unreadCount"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ActiveAt is the instant the conversation list is sorted by.
func (c Conversation) ActiveAt() time.Time {
	if c.LastMessageAt != nil {
		return *c.LastMessageAt
	}
	return c.CreatedAt
}

func (c Conversation) Participant(userID string) (User, bool) {
	for _, p := range c.Participants {
		if p.ID == userID {
			return p, true
		}
	}
	return User{}, false
}

func (c Conversation) Clone() Conversation {
	c.Participants = slices.Clone(c.Participants)
	if c.LastMessage != nil {
		lm := *c.LastMessage
		c.LastMessage = &lm
	}
	if c.LastMessageAt != nil {
		at := *c.LastMessageAt
		c.LastMessageAt = &at
	}
	if c.TaskID != nil {
		taskID := *c.TaskID
		c.TaskID = &taskID
	}
	return c
}

type ConversationKind string

const (
	ConversationKindDirect ConversationKind = "direct"
	ConversationKindGroup  ConversationKind = "group"
	ConversationKindTask   ConversationKind = "task"
)

func (k ConversationKind) String() string {
	return string(k)
}

// MessagePreview is the denormalized last message shown in the list.
type MessagePreview struct {
	MessageID      string    `json:"messageId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	Content        string    `json:"content"`
	HasAttachments bool      `json:"hasAttachments,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CreateDirectChat struct {
	UserID string `json:"userId"`
}

func (in *CreateDirectChat) Validate() error {
	v := validator.New()

	in.UserID = strings.TrimSpace(in.UserID)
	v.Check(in.UserID != "", "UserID", "User ID is required")

	return v.AsError()
}

type CreateGroupChat struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
	Description  string   `json:"description,omitempty"`
}

func (in *CreateGroupChat) Validate() error {
	v := validator.New()

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	var participants []string
	for _, p := range in.Participants {
		p = strings.TrimSpace(p)
		if p != "" && !slices.Contains(participants, p) {
			participants = append(participants, p)
		}
	}
	in.Participants = participants

	v.Check(in.Name != "", "Name", "Name is required")
	v.Check(len(in.Participants) >= 2, "Participants", "A group needs at least two participants")

	return v.AsError()
}
