package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/transport/socket"
	"github.com/nakamauwu/chatsync/types"
)

func newTestStore(backend *MessageBackendMock, list ListUpdater) (*MessageStore, *EmitterMock) {
	emitter := newEmitter()
	s := NewMessageStore(MessageStoreConfig{
		Backend:  backend,
		Emitter:  emitter,
		List:     list,
		Me:       me,
		Logger:   testLogger,
		PageSize: 20,
	})
	return s, emitter
}

func pagedBackend(all []types.Message) *MessageBackendMock {
	return &MessageBackendMock{
		MessagesFunc: func(_ context.Context, in types.ListMessages) (types.Page[types.Message], error) {
			limit := int(in.PageArgs.Limit)
			end := max(len(all)-int(in.PageArgs.Page-1)*limit, 0)
			start := max(end-limit, 0)
			return pageOf(slices.Clone(all[start:end]), start > 0), nil
		},
	}
}

func TestMessageStore_LoadHistory(t *testing.T) {
	var all []types.Message
	for i := range 41 {
		all = append(all, msgAt(fmt.Sprintf("m%02d", i+1), "c1", peer, i))
	}

	backend := pagedBackend(all)
	s, _ := newTestStore(backend, nil)

	for i, wantMore := range []bool{true, true, false} {
		hasMore, err := s.LoadHistory(t.Context(), "c1", uint(i+1))
		if err != nil {
			t.Fatalf("page %d: %v", i+1, err)
		}
		if hasMore != wantMore {
			t.Errorf("page %d: want hasMore %v; got %v", i+1, wantMore, hasMore)
		}
	}

	// reloading a page must not duplicate anything
	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}

	got := s.Messages("c1")
	if len(got) != len(all) {
		t.Fatalf("want %d messages; got %d", len(all), len(got))
	}
	for i := range all {
		if got[i].ID != all[i].ID {
			t.Fatalf("position %d: want %s; got %s", i, all[i].ID, got[i].ID)
		}
	}
	if s.HasMore("c1") {
		t.Error("want no more pages")
	}

	for _, c := range backend.MessagesCalls() {
		if c.In.PageArgs.Limit != 20 {
			t.Errorf("want limit 20; got %d", c.In.PageArgs.Limit)
		}
	}
}

func TestMessageStore_LoadHistory_Stale(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	backend := &MessageBackendMock{
		MessagesFunc: func(_ context.Context, in types.ListMessages) (types.Page[types.Message], error) {
			started <- struct{}{}
			<-release
			return pageOf([]types.Message{msgAt("m1", in.ConversationID, peer, 1)}, true), nil
		},
	}
	s, _ := newTestStore(backend, nil)
	s.SetActive("c1")

	type result struct {
		hasMore bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		hasMore, err := s.LoadHistory(t.Context(), "c1", 1)
		done <- result{hasMore, err}
	}()

	<-started
	s.SetActive("c2")
	close(release)

	r := <-done
	if r.err != nil {
		t.Fatalf("want stale response to be dropped silently; got %v", r.err)
	}
	if !r.hasMore {
		t.Error("want hasMore of the dropped page")
	}
	if got := s.Messages("c1"); len(got) != 0 {
		t.Fatalf("want stale page discarded; got %d messages", len(got))
	}

	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}
	if got := s.Messages("c1"); len(got) != 1 {
		t.Fatalf("want fresh load merged; got %d messages", len(got))
	}
}

func TestMessageStore_ApplyIncomingMessage_Unread(t *testing.T) {
	tt := []struct {
		name   string
		active string
		sender types.User
		want   int
	}{
		{name: "other_conversation", active: "c2", sender: peer, want: 1},
		{name: "active_conversation", active: "c1", sender: peer, want: 0},
		{name: "own_message", active: "c2", sender: me, want: 0},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestStore(&MessageBackendMock{}, nil)
			s.SetActive(tc.active)

			msg := msgAt("m1", "c1", tc.sender, 1)
			s.ApplyIncomingMessage(msg)
			s.ApplyIncomingMessage(msg)

			if got := s.Unread("c1"); got != tc.want {
				t.Errorf("want unread %d; got %d", tc.want, got)
			}
			if got := s.Messages("c1"); len(got) != 1 {
				t.Errorf("want 1 message; got %d", len(got))
			}
		})
	}
}

func TestMessageStore_SendMessage_Failure(t *testing.T) {
	backend := &MessageBackendMock{
		CreateMessageFunc: func(context.Context, types.CreateMessage) (types.Message, error) {
			return types.Message{}, fmt.Errorf("post message: %w", errs.Network)
		},
	}
	list, _ := newTestList(t, types.Conversation{ID: "c1", CreatedAt: epoch})
	s, emitter := newTestStore(backend, list)

	failed, err := s.SendMessage(t.Context(), "c1", "hello")
	if !errs.IsRetriable(err) {
		t.Fatalf("want retriable error; got %v", err)
	}
	if failed.State != types.MessageStateFailed || failed.Err == nil {
		t.Errorf("want failed message with its error; got %+v", failed)
	}

	msgs := s.Messages("c1")
	if len(msgs) != 1 || msgs[0].State != types.MessageStateFailed || msgs[0].Content != "hello" {
		t.Fatalf("want the failed message kept; got %+v", msgs)
	}
	if c, _ := list.Conversation("c1"); c.LastMessage != nil {
		t.Errorf("want list untouched by a failed send; got %+v", c.LastMessage)
	}
	if got := emitted(emitter); len(got) != 0 {
		t.Errorf("want nothing broadcast; got %v", got)
	}

	backend.CreateMessageFunc = func(_ context.Context, in types.CreateMessage) (types.Message, error) {
		return types.Message{
			ID:             "m1",
			ConversationID: in.ConversationID,
			Sender:         me,
			Content:        in.Content,
			CreatedAt:      epoch,
		}, nil
	}

	sent, err := s.Resend(t.Context(), failed.TempID)
	if err != nil {
		t.Fatal(err)
	}
	if sent.ID != "m1" || sent.State != types.MessageStateConfirmed {
		t.Errorf("want confirmed m1; got %+v", sent)
	}
	if calls := backend.CreateMessageCalls(); len(calls) != 2 || calls[1].In.TempID != failed.TempID {
		t.Errorf("want the resend to reuse temp id %s; got %+v", failed.TempID, calls)
	}

	msgs = s.Messages("c1")
	if len(msgs) != 1 || msgs[0].ID != "m1" {
		t.Fatalf("want only the confirmed message; got %+v", msgs)
	}
	c, _ := list.Conversation("c1")
	if c.LastMessage == nil || c.LastMessage.Content != "hello" {
		t.Errorf("want list preview hello; got %+v", c.LastMessage)
	}
	if c.UnreadCount != 0 {
		t.Errorf("want own message not counted as unread; got %d", c.UnreadCount)
	}
	if got := emitted(emitter); !slices.Equal(got, []string{socket.EventSendMessage}) {
		t.Errorf("want one send-message broadcast; got %v", got)
	}

	if _, err := s.Resend(t.Context(), failed.TempID); err == nil {
		t.Error("want error resending a message that is no longer failed")
	}
}

func TestMessageStore_SendMessage_Invalid(t *testing.T) {
	s, _ := newTestStore(&MessageBackendMock{}, nil)

	_, err := s.SendMessage(t.Context(), "c1", "   ")
	if !errs.IsValidation(err) {
		t.Fatalf("want validation error; got %v", err)
	}
	if got := s.Messages("c1"); len(got) != 0 {
		t.Errorf("want nothing inserted; got %d", len(got))
	}
}

func TestMessageStore_SendMessage_EchoRace(t *testing.T) {
	tt := []struct {
		name         string
		echoWithTemp bool
	}{
		{name: "echo_with_temp_id", echoWithTemp: true},
		{name: "echo_without_temp_id", echoWithTemp: false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var s *MessageStore
			backend := &MessageBackendMock{
				CreateMessageFunc: func(_ context.Context, in types.CreateMessage) (types.Message, error) {
					msg := msgAt("m1", in.ConversationID, me, 1)
					echo := msg
					if tc.echoWithTemp {
						echo.TempID = in.TempID
					}
					s.ApplyIncomingMessage(echo)
					return msg, nil
				},
			}
			s, _ = newTestStore(backend, nil)

			if _, err := s.SendMessage(t.Context(), "c1", "hi"); err != nil {
				t.Fatal(err)
			}

			msgs := s.Messages("c1")
			if len(msgs) != 1 {
				t.Fatalf("want 1 message; got %d", len(msgs))
			}
			if msgs[0].ID != "m1" || msgs[0].State != types.MessageStateConfirmed {
				t.Errorf("want confirmed m1; got %+v", msgs[0])
			}
			if s.Unread("c1") != 0 {
				t.Errorf("want no unread for own message")
			}
		})
	}
}

func TestMessageStore_MarkRead(t *testing.T) {
	backend := pagedBackend([]types.Message{
		msgAt("m1", "c1", peer, 1),
		msgAt("m2", "c1", me, 2),
		msgAt("m3", "c1", peer, 3),
	})
	backend.MarkReadFunc = func(context.Context, string) error { return nil }

	list, _ := newTestList(t, types.Conversation{ID: "c1", CreatedAt: epoch, UnreadCount: 2})
	s, emitter := newTestStore(backend, list)

	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}
	s.ApplyIncomingMessage(msgAt("m4", "c1", peer, 4))

	for range 2 {
		if err := s.MarkRead(t.Context(), "c1"); err != nil {
			t.Fatal(err)
		}
	}

	for _, m := range s.Messages("c1") {
		var n int
		for _, r := range m.ReadBy {
			if r.UserID == me.ID {
				n++
			}
		}
		want := 1
		if m.Sender.ID == me.ID {
			want = 0
		}
		if n != want {
			t.Errorf("message %s: want %d own receipts; got %d", m.ID, want, n)
		}
	}
	if got := s.Unread("c1"); got != 0 {
		t.Errorf("want unread 0; got %d", got)
	}
	if c, _ := list.Conversation("c1"); c.UnreadCount != 0 {
		t.Errorf("want list unread 0; got %d", c.UnreadCount)
	}
	if got := emitted(emitter); !slices.Equal(got, []string{socket.EventMarkRead, socket.EventMarkRead}) {
		t.Errorf("want mark-read broadcasts; got %v", got)
	}
}

func TestMessageStore_MarkRead_Rollback(t *testing.T) {
	backend := pagedBackend([]types.Message{
		msgAt("m1", "c1", peer, 1),
		msgAt("m2", "c1", peer, 2),
	})
	backend.MarkReadFunc = func(context.Context, string) error { return errs.Network }

	list, _ := newTestList(t, types.Conversation{ID: "c1", CreatedAt: epoch, UnreadCount: 2})
	s, emitter := newTestStore(backend, list)

	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}
	s.ApplyIncomingMessage(msgAt("m3", "c1", peer, 3))

	wantUnread := s.Unread("c1")
	c, _ := list.Conversation("c1")
	wantListUnread := c.UnreadCount
	if wantListUnread == 0 {
		t.Fatal("want list unread before mark read")
	}

	err := s.MarkRead(t.Context(), "c1")
	if !errors.Is(err, errs.Network) {
		t.Fatalf("want network error; got %v", err)
	}

	for _, m := range s.Messages("c1") {
		if m.ReadByUser(me.ID) {
			t.Errorf("message %s: want own receipt removed", m.ID)
		}
	}
	if got := s.Unread("c1"); got != wantUnread {
		t.Errorf("want unread %d; got %d", wantUnread, got)
	}
	if c, _ := list.Conversation("c1"); c.UnreadCount != wantListUnread {
		t.Errorf("want list unread %d; got %d", wantListUnread, c.UnreadCount)
	}
	if got := emitted(emitter); len(got) != 0 {
		t.Errorf("want no broadcast after failure; got %v", got)
	}
}

func TestMessageStore_ApplyReaction(t *testing.T) {
	backend := pagedBackend([]types.Message{msgAt("m1", "c1", peer, 1)})
	backend.AddReactionFunc = func(context.Context, string, string, string) error { return nil }
	s, _ := newTestStore(backend, nil)

	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}

	for range 5 {
		if err := s.ApplyReaction(t.Context(), "m1", me.ID, "👍"); err != nil {
			t.Fatal(err)
		}
	}
	m := s.Messages("c1")[0]
	if len(m.Reactions) != 1 || m.Reactions[0].Emoji != "👍" {
		t.Fatalf("want a single 👍; got %+v", m.Reactions)
	}

	if err := s.ApplyReaction(t.Context(), "m1", me.ID, "❤️"); err != nil {
		t.Fatal(err)
	}
	m = s.Messages("c1")[0]
	if len(m.Reactions) != 1 || m.Reactions[0].Emoji != "❤️" {
		t.Fatalf("want the reaction replaced by ❤️; got %+v", m.Reactions)
	}

	if err := s.ApplyReaction(t.Context(), "m1", me.ID, "nope"); !errs.IsValidation(err) {
		t.Errorf("want validation error; got %v", err)
	}
	if err := s.ApplyReaction(t.Context(), "missing", me.ID, "👍"); err == nil {
		t.Error("want error for unknown message")
	}
}

func TestMessageStore_ReactionRollback(t *testing.T) {
	var fail bool
	backend := pagedBackend([]types.Message{msgAt("m1", "c1", peer, 1)})
	backend.AddReactionFunc = func(context.Context, string, string, string) error {
		if fail {
			return errs.Server
		}
		return nil
	}
	backend.RemoveReactionFunc = func(context.Context, string, string) error {
		return errs.Network
	}
	s, emitter := newTestStore(backend, nil)

	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyReaction(t.Context(), "m1", me.ID, "👍"); err != nil {
		t.Fatal(err)
	}

	fail = true
	if err := s.ApplyReaction(t.Context(), "m1", me.ID, "❤️"); !errors.Is(err, errs.Server) {
		t.Fatalf("want server error; got %v", err)
	}
	if r, _ := s.Messages("c1")[0].ReactionBy(me.ID); r.Emoji != "👍" {
		t.Errorf("want previous reaction back; got %q", r.Emoji)
	}

	if err := s.RemoveReaction(t.Context(), "m1", me.ID); !errs.IsRetriable(err) {
		t.Fatalf("want network error; got %v", err)
	}
	if r, _ := s.Messages("c1")[0].ReactionBy(me.ID); r.Emoji != "👍" {
		t.Errorf("want reaction restored after failed removal; got %q", r.Emoji)
	}

	if got := emitted(emitter); !slices.Equal(got, []string{socket.EventAddReaction}) {
		t.Errorf("want only the successful reaction broadcast; got %v", got)
	}
}

func TestMessageStore_ReactionRollback_Reload(t *testing.T) {
	var s *MessageStore
	backend := pagedBackend([]types.Message{msgAt("m1", "c1", peer, 1)})
	backend.AddReactionFunc = func(context.Context, string, string, string) error {
		s.Forget("c1")
		return errs.Server
	}
	s, _ = newTestStore(backend, nil)

	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyReaction(t.Context(), "m1", me.ID, "👍"); err == nil {
		t.Fatal("want error")
	}

	if n := len(backend.MessagesCalls()); n != 2 {
		t.Errorf("want the first page reloaded; got %d loads", n)
	}
	msgs := s.Messages("c1")
	if len(msgs) != 1 || len(msgs[0].Reactions) != 0 {
		t.Errorf("want server state without the reaction; got %+v", msgs)
	}
}

func TestMessageStore_Receipts(t *testing.T) {
	backend := pagedBackend([]types.Message{
		msgAt("m1", "c1", peer, 1),
		msgAt("m2", "c1", me, 2),
		msgAt("m3", "c1", me, 3),
	})
	s, _ := newTestStore(backend, nil)
	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}

	read := types.ReceiptEvent{
		ConversationID: "c1",
		Receipt:        types.Receipt{UserID: peer.ID, At: epoch.Add(2 * time.Minute)},
	}
	s.ApplyReadBy(read)
	s.ApplyReadBy(read)
	s.ApplyDelivered(types.ReceiptEvent{
		ConversationID: "c1",
		MessageID:      "m3",
		Receipt:        types.Receipt{UserID: peer.ID, At: epoch.Add(5 * time.Minute)},
	})

	msgs := s.Messages("c1")
	if msgs[0].ReadByUser(peer.ID) {
		t.Error("want reader's own message untouched")
	}
	if len(msgs[1].ReadBy) != 1 {
		t.Errorf("want one read receipt on m2; got %d", len(msgs[1].ReadBy))
	}
	if msgs[2].ReadByUser(peer.ID) {
		t.Error("want m3, sent after the receipt, unread")
	}
	if !msgs[2].DeliveredToUser(peer.ID) {
		t.Error("want m3 delivered")
	}
}

func TestMessageStore_Delete(t *testing.T) {
	backend := pagedBackend([]types.Message{msgAt("m1", "c1", peer, 1)})
	backend.DeleteMessageFunc = func(context.Context, types.DeleteMessage) error { return nil }
	s, emitter := newTestStore(backend, nil)
	if _, err := s.LoadHistory(t.Context(), "c1", 1); err != nil {
		t.Fatal(err)
	}

	if s.MarkDeleted("missing") {
		t.Error("want false for unknown message")
	}
	if err := s.DeleteMessage(t.Context(), "c1", "m1", true); err != nil {
		t.Fatal(err)
	}

	m := s.Messages("c1")[0]
	if !m.IsDeleted || m.Content != "message m1" || m.VisibleContent() != "" {
		t.Errorf("want deleted message with its content kept; got %+v", m)
	}
	if calls := backend.DeleteMessageCalls(); len(calls) != 1 || !calls[0].In.ForEveryone {
		t.Errorf("want one delete for everyone; got %+v", calls)
	}
	if got := emitted(emitter); !slices.Equal(got, []string{socket.EventDeleteMessage}) {
		t.Errorf("want delete-message broadcast; got %v", got)
	}
}
