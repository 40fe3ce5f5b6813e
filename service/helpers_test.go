package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/nakamauwu/chatsync/types"
)

var (
	testLogger = slog.New(slog.DiscardHandler)

	me    = types.User{ID: "u1", Name: "Me"}
	peer  = types.User{ID: "u2", Name: "Peer"}
	epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
)

func msgAt(id, conversationID string, sender types.User, minute int) types.Message {
	return types.Message{
		ID:             id,
		ConversationID: conversationID,
		Sender:         sender,
		Content:        "message " + id,
		CreatedAt:      epoch.Add(time.Duration(minute) * time.Minute),
		State:          types.MessageStateConfirmed,
	}
}

func pageOf[T any](items []T, hasMore bool) types.Page[T] {
	return types.Page[T]{Items: items, HasMore: hasMore}
}

func newEmitter() *EmitterMock {
	return &EmitterMock{
		EmitFunc: func(context.Context, string, any) error { return nil },
	}
}

func emitted(e *EmitterMock) []string {
	var out []string
	for _, c := range e.EmitCalls() {
		out = append(out, c.Event)
	}
	return out
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func newTestList(t *testing.T, conversations ...types.Conversation) (*ConversationList, *ConversationBackendMock) {
	t.Helper()

	backend := &ConversationBackendMock{
		ConversationsFunc: func(context.Context, string) ([]types.Conversation, error) {
			out := make([]types.Conversation, len(conversations))
			for i, c := range conversations {
				out[i] = c.Clone()
			}
			return out, nil
		},
	}
	l := NewConversationList(ConversationListConfig{
		Backend: backend,
		Me:      me,
		Logger:  testLogger,
	})
	if err := l.Refresh(t.Context()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return l, backend
}
