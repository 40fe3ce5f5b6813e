package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/emoji"
	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/id"
	"github.com/nakamauwu/chatsync/metrics"
	"github.com/nakamauwu/chatsync/transport/socket"
	"github.com/nakamauwu/chatsync/types"
	goerrs "github.com/nicolasparada/go-errs"
)

// ListUpdater receives the message events that change the conversation
// list.
type ListUpdater interface {
	ApplyMessageToList(msg types.Message, conversationID, activeConversationID string)
	ResetUnread(conversationID string) int
	RestoreUnread(conversationID string, n int)
}

type MessageStoreConfig struct {
	Backend  MessageBackend
	Emitter  Emitter
	Bus      *dispatch.Bus
	List     ListUpdater
	Me       types.User
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	PageSize uint
}

// MessageStore is the only writer of the per conversation message lists.
// Every source of messages (history pages, pushes and optimistic sends)
// goes through it and converges on one entry per message ID, ordered by
// creation time and then arrival.
type MessageStore struct {
	backend  MessageBackend
	emitter  Emitter
	bus      *dispatch.Bus
	list     ListUpdater
	me       types.User
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pageSize uint
	now      func() time.Time

	mu      sync.Mutex
	seq     uint64
	active  string
	threads map[string]*thread
}

type thread struct {
	messages []types.Message
	// generation changes whenever responses issued earlier must be ignored.
	generation uint64
	unread     int
	hasMore    bool
}

func NewMessageStore(cfg MessageStoreConfig) *MessageStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Bus == nil {
		cfg.Bus = dispatch.NewBus(cfg.Logger)
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = types.DefaultPageSize
	}
	return &MessageStore{
		backend:  cfg.Backend,
		emitter:  cfg.Emitter,
		bus:      cfg.Bus,
		list:     cfg.List,
		me:       cfg.Me,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		pageSize: cfg.PageSize,
		now:      time.Now,
		threads:  map[string]*thread{},
	}
}

func (s *MessageStore) threadLocked(conversationID string) *thread {
	t, ok := s.threads[conversationID]
	if !ok {
		t = &thread{}
		s.threads[conversationID] = t
	}
	return t
}

func (t *thread) index(messageID string) int {
	return slices.IndexFunc(t.messages, func(m types.Message) bool { return m.ID == messageID })
}

func (t *thread) indexTemp(tempID string) int {
	return slices.IndexFunc(t.messages, func(m types.Message) bool {
		return m.TempID == tempID && m.State != types.MessageStateConfirmed
	})
}

// place inserts m keeping the order. Scanning from the end makes the
// common case, a newest message, an append.
func (t *thread) place(m types.Message) {
	i := len(t.messages)
	for i > 0 && m.Before(t.messages[i-1]) {
		i--
	}
	t.messages = slices.Insert(t.messages, i, m)
}

func (t *thread) replace(i int, m types.Message) {
	m.Seq = t.messages[i].Seq
	t.messages = slices.Delete(t.messages, i, i+1)
	t.place(m)
}

func (s *MessageStore) insertLocked(t *thread, m types.Message) {
	s.seq++
	m.Seq = s.seq
	t.place(m)
}

// upsertLocked merges m into t and reports whether it was a new message.
func (s *MessageStore) upsertLocked(t *thread, m types.Message) bool {
	if i := t.index(m.ID); i >= 0 {
		t.replace(i, merged(t.messages[i], m))
		return false
	}
	if m.TempID != "" {
		if i := t.indexTemp(m.TempID); i >= 0 {
			t.replace(i, merged(t.messages[i], m))
			return false
		}
	}
	s.insertLocked(t, m)
	return true
}

// merged takes the server copy of a message without letting its local
// progress regress.
func merged(local, remote types.Message) types.Message {
	out := remote.Clone()
	if out.TempID == "" {
		out.TempID = local.TempID
	}
	if out.State == "" || local.State == types.MessageStateConfirmed {
		out.State = types.MessageStateConfirmed
	}
	out.IsDeleted = out.IsDeleted || local.IsDeleted
	for _, r := range local.ReadBy {
		if !out.ReadByUser(r.UserID) {
			out.ReadBy = append(out.ReadBy, r)
		}
	}
	for _, r := range local.DeliveredTo {
		if !out.DeliveredToUser(r.UserID) {
			out.DeliveredTo = append(out.DeliveredTo, r)
		}
	}
	return out
}

func (s *MessageStore) findLocked(messageID string) (*thread, int) {
	for _, t := range s.threads {
		if i := t.index(messageID); i >= 0 {
			return t, i
		}
	}
	return nil, -1
}

func (s *MessageStore) changed(conversationID string) {
	s.bus.Publish(dispatch.TopicMessagesChanged, conversationID)
}

// emit broadcasts best effort. The REST call already made the change
// durable, so a missing connection is only logged.
func (s *MessageStore) emit(ctx context.Context, event string, payload any) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, event, payload); err != nil {
		if errors.Is(err, errs.NotConnected) {
			s.logger.Debug("event not broadcast", "event", event, "err", err)
			return
		}
		s.logger.Warn("could not broadcast event", "event", event, "err", err)
	}
}

// LoadHistory fetches one page, page 1 being the most recent, and merges it.
// It reports whether older pages exist. A response that arrives after the
// conversation was switched away from is dropped.
func (s *MessageStore) LoadHistory(ctx context.Context, conversationID string, page uint) (bool, error) {
	s.mu.Lock()
	t := s.threadLocked(conversationID)
	gen := t.generation
	s.mu.Unlock()

	p, err := s.backend.Messages(ctx, types.ListMessages{
		ConversationID: conversationID,
		PageArgs:       types.PageArgs{Page: page, Limit: s.pageSize},
	})
	if err != nil {
		return false, fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	if s.threads[conversationID] != t || t.generation != gen {
		s.mu.Unlock()
		s.metrics.StaleResponse()
		s.logger.Debug("discarding stale history page", "conversation", conversationID, "page", page)
		return p.HasMore, nil
	}
	for _, m := range p.Items {
		if m.State == "" {
			m.State = types.MessageStateConfirmed
		}
		s.upsertLocked(t, m)
	}
	t.hasMore = p.HasMore
	s.mu.Unlock()

	s.changed(conversationID)
	return p.HasMore, nil
}

// ApplyIncomingMessage merges a pushed message. A new message from someone
// else counts as unread unless its conversation is the active one.
func (s *MessageStore) ApplyIncomingMessage(msg types.Message) {
	if msg.State == "" {
		msg.State = types.MessageStateConfirmed
	}

	s.mu.Lock()
	t := s.threadLocked(msg.ConversationID)
	inserted := s.upsertLocked(t, msg)
	fromOther := msg.Sender.ID != s.me.ID
	active := s.active
	if inserted && fromOther && active != msg.ConversationID {
		t.unread++
	}
	s.mu.Unlock()

	s.changed(msg.ConversationID)

	if inserted && s.list != nil {
		if !fromOther {
			active = msg.ConversationID
		}
		s.list.ApplyMessageToList(msg, msg.ConversationID, active)
	}
}

// SendMessage inserts a pending message right away and confirms it with
// the backend. On failure the message stays in the list as failed and the
// error is returned; Resend retries it.
func (s *MessageStore) SendMessage(ctx context.Context, conversationID, content string) (types.Message, error) {
	in := types.CreateMessage{ConversationID: conversationID, Content: content}
	return s.send(ctx, in, nil, s.backend.CreateMessage)
}

type createFunc func(ctx context.Context, in types.CreateMessage) (types.Message, error)

func (s *MessageStore) send(ctx context.Context, in types.CreateMessage, attachments []types.Attachment, create createFunc) (types.Message, error) {
	if in.TempID == "" {
		in.TempID = id.GenerateTemp()
	}
	in.SetHasAttachments(len(attachments) != 0)
	if err := in.Validate(); err != nil {
		return types.Message{}, err
	}

	pending := types.Message{
		ID:             in.TempID,
		TempID:         in.TempID,
		ConversationID: in.ConversationID,
		Sender:         s.me,
		Content:        in.Content,
		Attachments:    attachments,
		CreatedAt:      s.now().UTC(),
		State:          types.MessageStatePending,
	}

	s.mu.Lock()
	s.insertLocked(s.threadLocked(in.ConversationID), pending)
	s.mu.Unlock()
	s.changed(in.ConversationID)

	msg, err := create(ctx, in)
	if err != nil && !errs.IsPartial(err) {
		s.metrics.MessageSent("failed")
		failed := s.fail(in.ConversationID, in.TempID, err)
		return failed, fmt.Errorf("send message: %w", err)
	}

	warning := err
	if warning != nil {
		s.logger.Warn("message sent with warning", "conversation", in.ConversationID, "warning", warning)
	}

	msg.TempID = in.TempID
	msg.State = types.MessageStateConfirmed
	if msg.ConversationID == "" {
		msg.ConversationID = in.ConversationID
	}
	if msg.Sender.ID == "" {
		msg.Sender = s.me
	}

	s.mu.Lock()
	t := s.threadLocked(in.ConversationID)
	if i := t.index(msg.ID); i >= 0 {
		// the push echo won the race; drop the placeholder
		if j := t.index(in.TempID); j >= 0 {
			t.messages = slices.Delete(t.messages, j, j+1)
		}
		i = t.index(msg.ID)
		t.replace(i, merged(t.messages[i], msg))
	} else if j := t.index(in.TempID); j >= 0 {
		t.replace(j, msg)
	} else {
		s.insertLocked(t, msg)
	}
	s.mu.Unlock()

	s.metrics.MessageSent("confirmed")
	s.changed(in.ConversationID)

	if s.list != nil {
		s.list.ApplyMessageToList(msg, in.ConversationID, in.ConversationID)
	}

	s.emit(ctx, socket.EventSendMessage, socket.SendMessagePayload{
		ConversationID: in.ConversationID,
		Message:        msg,
	})

	return msg, warning
}

func (s *MessageStore) fail(conversationID, tempID string, err error) types.Message {
	s.mu.Lock()
	t := s.threadLocked(conversationID)
	var out types.Message
	if i := t.index(tempID); i >= 0 {
		t.messages[i].State = types.MessageStateFailed
		t.messages[i].Err = err
		out = t.messages[i].Clone()
	}
	s.mu.Unlock()

	s.changed(conversationID)
	return out
}

// Resend replaces a failed message with a pending send of the same content
// and temp id, so the backend can recognise a request it already stored.
func (s *MessageStore) Resend(ctx context.Context, tempID string) (types.Message, error) {
	s.mu.Lock()
	var (
		failed types.Message
		found  bool
	)
	for _, t := range s.threads {
		i := t.index(tempID)
		if i < 0 || t.messages[i].State != types.MessageStateFailed {
			continue
		}
		failed = t.messages[i]
		found = true
		if len(failed.Attachments) == 0 {
			t.messages = slices.Delete(t.messages, i, i+1)
		}
		break
	}
	s.mu.Unlock()

	if !found {
		return types.Message{}, goerrs.NotFoundError("failed message not found")
	}
	if len(failed.Attachments) != 0 {
		return types.Message{}, errs.NewInvalidArgumentError("Attachments", "files must be attached again")
	}

	s.changed(failed.ConversationID)
	in := types.CreateMessage{
		ConversationID: failed.ConversationID,
		Content:        failed.Content,
		TempID:         failed.TempID,
	}
	return s.send(ctx, in, nil, s.backend.CreateMessage)
}

// MarkRead records the current user as reader of every loaded message from
// others and zeroes the unread counter. Calling it again changes nothing.
// If the backend rejects it, the receipts come off and the cleared counts
// come back.
func (s *MessageStore) MarkRead(ctx context.Context, conversationID string) error {
	now := s.now().UTC()

	s.mu.Lock()
	t := s.threadLocked(conversationID)
	var marked []string
	for i := range t.messages {
		m := &t.messages[i]
		if m.Sender.ID == s.me.ID || m.State != types.MessageStateConfirmed || m.ReadByUser(s.me.ID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, types.Receipt{UserID: s.me.ID, At: now})
		marked = append(marked, m.ID)
	}
	cleared := t.unread
	t.unread = 0
	s.mu.Unlock()

	var listCleared int
	if s.list != nil {
		listCleared = s.list.ResetUnread(conversationID)
	}
	if len(marked) != 0 || cleared != 0 {
		s.changed(conversationID)
	}

	if err := s.backend.MarkRead(ctx, conversationID); err != nil {
		s.unmarkRead(conversationID, marked, now, cleared)
		if s.list != nil {
			s.list.RestoreUnread(conversationID, listCleared)
		}
		return fmt.Errorf("mark read: %w", err)
	}

	s.emit(ctx, socket.EventMarkRead, socket.MarkReadPayload{
		ConversationID: conversationID,
		UserID:         s.me.ID,
	})
	return nil
}

// unmarkRead drops the receipts a failed MarkRead added at the given time
// and adds the cleared unread count back.
func (s *MessageStore) unmarkRead(conversationID string, marked []string, at time.Time, cleared int) {
	if len(marked) == 0 && cleared == 0 {
		return
	}

	s.mu.Lock()
	t := s.threadLocked(conversationID)
	for i := range t.messages {
		m := &t.messages[i]
		if !slices.Contains(marked, m.ID) {
			continue
		}
		m.ReadBy = slices.DeleteFunc(m.ReadBy, func(r types.Receipt) bool {
			return r.UserID == s.me.ID && r.At.Equal(at)
		})
	}
	t.unread += cleared
	s.mu.Unlock()

	s.changed(conversationID)
}

// ApplyReaction sets userID's reaction on a message, replacing any previous
// one. If the backend rejects it, the user's previous reaction comes back.
func (s *MessageStore) ApplyReaction(ctx context.Context, messageID, userID, e string) error {
	if !emoji.IsValid(e) {
		return errs.NewInvalidArgumentError("Emoji", "invalid emoji")
	}

	applied := types.Reaction{UserID: userID, Emoji: e, CreatedAt: s.now().UTC()}

	s.mu.Lock()
	t, i := s.findLocked(messageID)
	if i < 0 {
		s.mu.Unlock()
		return goerrs.NotFoundError("message not found")
	}
	m := &t.messages[i]
	conversationID := m.ConversationID
	prev, hadPrev := m.ReactionBy(userID)
	m.Reactions = upsertReaction(m.Reactions, applied)
	s.mu.Unlock()

	s.changed(conversationID)

	if err := s.backend.AddReaction(ctx, conversationID, messageID, e); err != nil {
		var restore *types.Reaction
		if hadPrev {
			restore = &prev
		}
		s.rollbackReaction(ctx, conversationID, messageID, userID, &applied, restore)
		return fmt.Errorf("add reaction: %w", err)
	}

	s.emit(ctx, socket.EventAddReaction, socket.ReactionPayload{
		ConversationID: conversationID,
		MessageID:      messageID,
		Emoji:          e,
	})
	return nil
}

// RemoveReaction drops userID's reaction from a message. Nothing happens
// when there is none.
func (s *MessageStore) RemoveReaction(ctx context.Context, messageID, userID string) error {
	s.mu.Lock()
	t, i := s.findLocked(messageID)
	if i < 0 {
		s.mu.Unlock()
		return goerrs.NotFoundError("message not found")
	}
	m := &t.messages[i]
	conversationID := m.ConversationID
	prev, hadPrev := m.ReactionBy(userID)
	if !hadPrev {
		s.mu.Unlock()
		return nil
	}
	m.Reactions = removeReaction(m.Reactions, userID)
	s.mu.Unlock()

	s.changed(conversationID)

	if err := s.backend.RemoveReaction(ctx, conversationID, messageID); err != nil {
		s.rollbackReaction(ctx, conversationID, messageID, userID, nil, &prev)
		return fmt.Errorf("remove reaction: %w", err)
	}

	s.emit(ctx, socket.EventRemoveReaction, socket.ReactionPayload{
		ConversationID: conversationID,
		MessageID:      messageID,
	})
	return nil
}

// rollbackReaction restores prev as userID's reaction, but only while the
// reaction is still the one applied optimistically. When the message is no
// longer loaded the most recent page is reloaded instead.
func (s *MessageStore) rollbackReaction(ctx context.Context, conversationID, messageID, userID string, applied, prev *types.Reaction) {
	s.mu.Lock()
	t := s.threads[conversationID]
	i := -1
	if t != nil {
		i = t.index(messageID)
	}
	if i < 0 {
		s.mu.Unlock()
		s.logger.Warn("reaction rollback state gone, reloading", "conversation", conversationID, "message", messageID)
		if _, err := s.LoadHistory(ctx, conversationID, 1); err != nil {
			s.logger.Error("could not reload after reaction failure", "conversation", conversationID, "err", err)
		}
		return
	}

	m := &t.messages[i]
	cur, has := m.ReactionBy(userID)
	if (applied == nil && !has) || (applied != nil && has && cur == *applied) {
		m.Reactions = removeReaction(m.Reactions, userID)
		if prev != nil {
			m.Reactions = upsertReaction(m.Reactions, *prev)
		}
	}
	s.mu.Unlock()

	s.changed(conversationID)
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

func removeReaction(list []types.Reaction, userID string) []types.Reaction {
	return slices.DeleteFunc(list, func(r types.Reaction) bool { return r.UserID == userID })
}

// OnReactionAdded applies a reaction pushed by the server.
func (s *MessageStore) OnReactionAdded(ev types.ReactionEvent) {
	s.mu.Lock()
	t, i := s.findLocked(ev.MessageID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	m := &t.messages[i]
	if ev.Reaction.CreatedAt.IsZero() {
		ev.Reaction.CreatedAt = s.now().UTC()
	}
	m.Reactions = upsertReaction(m.Reactions, ev.Reaction)
	conversationID := m.ConversationID
	s.mu.Unlock()

	s.changed(conversationID)
}

func (s *MessageStore) OnReactionRemoved(ev types.ReactionEvent) {
	s.mu.Lock()
	t, i := s.findLocked(ev.MessageID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	m := &t.messages[i]
	m.Reactions = removeReaction(m.Reactions, ev.Reaction.UserID)
	conversationID := m.ConversationID
	s.mu.Unlock()

	s.changed(conversationID)
}

// MarkDeleted hides a message. Its content stays in memory.
func (s *MessageStore) MarkDeleted(messageID string) bool {
	s.mu.Lock()
	t, i := s.findLocked(messageID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	t.messages[i].IsDeleted = true
	conversationID := t.messages[i].ConversationID
	s.mu.Unlock()

	s.changed(conversationID)
	return true
}

func (s *MessageStore) DeleteMessage(ctx context.Context, conversationID, messageID string, forEveryone bool) error {
	in := types.DeleteMessage{
		ConversationID: conversationID,
		MessageID:      messageID,
		ForEveryone:    forEveryone,
	}
	if err := s.backend.DeleteMessage(ctx, in); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	s.MarkDeleted(messageID)

	s.emit(ctx, socket.EventDeleteMessage, socket.DeleteMessagePayload{
		ConversationID: conversationID,
		MessageID:      messageID,
		ForEveryone:    forEveryone,
	})
	return nil
}

// ApplyDelivered records a delivery receipt. Without a message ID the
// receipt covers every message sent by others up to the receipt time.
func (s *MessageStore) ApplyDelivered(ev types.ReceiptEvent) {
	s.applyReceipt(ev, func(m *types.Message) bool {
		if m.DeliveredToUser(ev.Receipt.UserID) {
			return false
		}
		m.DeliveredTo = append(m.DeliveredTo, ev.Receipt)
		return true
	})
}

// ApplyReadBy records a read receipt. Without a message ID the reader has
// read the whole conversation.
func (s *MessageStore) ApplyReadBy(ev types.ReceiptEvent) {
	s.applyReceipt(ev, func(m *types.Message) bool {
		if m.ReadByUser(ev.Receipt.UserID) {
			return false
		}
		m.ReadBy = append(m.ReadBy, ev.Receipt)
		return true
	})
}

func (s *MessageStore) applyReceipt(ev types.ReceiptEvent, apply func(m *types.Message) bool) {
	s.mu.Lock()
	t := s.threads[ev.ConversationID]
	var changed bool
	if t != nil {
		for i := range t.messages {
			m := &t.messages[i]
			if m.State != types.MessageStateConfirmed {
				continue
			}
			if ev.MessageID != "" && m.ID != ev.MessageID {
				continue
			}
			if ev.MessageID == "" && (m.Sender.ID == ev.Receipt.UserID || m.CreatedAt.After(ev.Receipt.At)) {
				continue
			}
			if apply(m) {
				changed = true
			}
		}
	}
	s.mu.Unlock()

	if changed {
		s.changed(ev.ConversationID)
	}
}

// SetActive switches the conversation the user is looking at. History
// requests still in flight for the previous one are ignored on arrival.
func (s *MessageStore) SetActive(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == conversationID {
		return
	}
	if t, ok := s.threads[s.active]; ok {
		t.generation++
	}
	s.active = conversationID
}

func (s *MessageStore) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Forget drops the loaded messages of a conversation.
func (s *MessageStore) Forget(conversationID string) {
	s.mu.Lock()
	delete(s.threads, conversationID)
	s.mu.Unlock()

	s.changed(conversationID)
}

// Messages returns a copy of the ordered message list.
func (s *MessageStore) Messages(conversationID string) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[conversationID]
	if !ok {
		return nil
	}
	out := make([]types.Message, len(t.messages))
	for i, m := range t.messages {
		out[i] = m.Clone()
	}
	return out
}

func (s *MessageStore) Unread(conversationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.threads[conversationID]; ok {
		return t.unread
	}
	return 0
}

func (s *MessageStore) HasMore(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.threads[conversationID]; ok {
		return t.hasMore
	}
	return false
}
