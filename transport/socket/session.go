package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nakamauwu/chatsync/dispatch"
	"github.com/nakamauwu/chatsync/errs"
	"github.com/nakamauwu/chatsync/ingest"
	"github.com/nakamauwu/chatsync/metrics"
	"github.com/nakamauwu/chatsync/types"
)

const (
	DefaultConnectTimeout    = 20 * time.Second
	DefaultReconnectAttempts = 10
	DefaultReconnectDelay    = time.Second
	DefaultReconnectDelayMax = 5 * time.Second

	writeTimeout = 10 * time.Second
)

// errSuperseded reports a connection that was established after Disconnect
// and was closed right away.
var errSuperseded = errors.New("connection superseded by disconnect")

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	// StateFailed means automatic reconnection gave up. Only an explicit
	// Connect leaves it.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type SessionConfig struct {
	Dialer   Dialer
	Registry *dispatch.Registry
	Logger   *slog.Logger
	Metrics  *metrics.Metrics

	ConnectTimeout    time.Duration
	ReconnectAttempts uint64
	ReconnectDelay    time.Duration
	ReconnectDelayMax time.Duration
}

// Session keeps at most one live push connection per client. Inbound frames
// are decoded and dispatched on the registry from a single goroutine, so
// callbacks observe events in arrival order.
type Session struct {
	cfg    SessionConfig
	logger *slog.Logger
	errs   chan error
	wg     sync.WaitGroup

	// dialMu serializes dial attempts. writeMu serializes outbound frames
	// so the room replay of a fresh connection goes out before anything
	// else. Lock order: dialMu, writeMu, mu.
	dialMu  sync.Mutex
	writeMu sync.Mutex

	mu         sync.Mutex
	cred       types.Credential
	conn       Conn
	readCancel context.CancelFunc
	loop       *reconnectLoop
	state      State
	epoch      uint64
	rooms      map[string]struct{}
}

type reconnectLoop struct {
	cancel context.CancelFunc
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = dispatch.NewRegistry(cfg.Logger, cfg.Metrics)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReconnectAttempts == 0 {
		cfg.ReconnectAttempts = DefaultReconnectAttempts
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.ReconnectDelayMax < cfg.ReconnectDelay {
		cfg.ReconnectDelayMax = max(DefaultReconnectDelayMax, cfg.ReconnectDelay)
	}

	return &Session{
		cfg:    cfg,
		logger: cfg.Logger,
		errs:   make(chan error, 1),
		rooms:  map[string]struct{}{},
	}
}

// Errs reports reconnection give-ups. Sends never block.
func (s *Session) Errs() <-chan error {
	return s.errs
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnStateChange calls fn with every state transition. The returned func
// stops the notifications.
func (s *Session) OnStateChange(fn func(State)) func() {
	return s.cfg.Registry.Bus().Subscribe(dispatch.TopicSessionState, func(payload any) {
		if state, ok := payload.(State); ok {
			fn(state)
		}
	})
}

// Rooms returns the joined conversations in a stable order.
func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomsLocked()
}

func (s *Session) roomsLocked() []string {
	out := make([]string, 0, len(s.rooms))
	for room := range s.rooms {
		out = append(out, room)
	}
	slices.Sort(out)
	return out
}

// setState records state and publishes it on the bus. Callers must not hold
// any session lock: observers are free to call back into the session.
func (s *Session) setState(state State) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed {
		s.publishState(state)
	}
}

func (s *Session) publishState(state State) {
	s.cfg.Metrics.ConnectionState(int(state))
	s.logger.Debug("session state changed", "state", state)
	s.cfg.Registry.Bus().Publish(dispatch.TopicSessionState, state)
}

// markConnected moves to StateConnected unless conn was lost or replaced
// in the meantime.
func (s *Session) markConnected(conn Conn) {
	s.mu.Lock()
	if s.conn != conn || s.state == StateConnected {
		s.mu.Unlock()
		return
	}
	s.state = StateConnected
	s.mu.Unlock()

	s.publishState(StateConnected)
}

func (s *Session) report(err error) {
	select {
	case s.errs <- err:
	default:
		s.logger.Error("session error dropped", "err", err)
	}
}

// Connect establishes the connection for cred. It is a no-op while a live
// connection exists, and it takes over from a pending reconnection. When
// the dial fails for a reason worth retrying, the error is returned and
// reconnection starts in the background.
func (s *Session) Connect(ctx context.Context, cred types.Credential) error {
	s.mu.Lock()
	live := s.conn != nil
	s.mu.Unlock()

	if live {
		return nil
	}

	s.setState(StateConnecting)

	conn, epoch, err := s.connect(ctx, cred)
	if err != nil {
		if s.retriable(ctx, err) {
			s.logger.Warn("connect failed, retrying", "err", err)
			s.startReconnect(epoch)
		} else {
			s.setState(StateDisconnected)
		}
		return fmt.Errorf("connect: %w", err)
	}

	s.markConnected(conn)
	return nil
}

// connect dials and attaches while holding dialMu. It returns the live
// connection when another caller got there first.
func (s *Session) connect(ctx context.Context, cred types.Credential) (Conn, uint64, error) {
	s.dialMu.Lock()
	defer s.dialMu.Unlock()

	s.mu.Lock()
	epoch := s.epoch
	if s.conn != nil {
		conn := s.conn
		s.mu.Unlock()
		return conn, epoch, nil
	}
	s.stopReconnectLocked()
	s.cred = cred
	s.mu.Unlock()

	conn, err := s.dial(ctx, cred)
	if err != nil {
		return nil, epoch, err
	}

	if err := s.attach(ctx, conn, epoch); err != nil {
		return nil, epoch, err
	}
	return conn, epoch, nil
}

func (s *Session) retriable(ctx context.Context, err error) bool {
	return s.cfg.Dialer != nil &&
		ctx.Err() == nil &&
		!errs.IsUnauthenticated(err) &&
		!errors.Is(err, errSuperseded)
}

func (s *Session) dial(ctx context.Context, cred types.Credential) (Conn, error) {
	if s.cfg.Dialer == nil {
		return nil, errors.New("no dialer configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	conn, err := s.cfg.Dialer.Dial(ctx, cred)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("dial: %w", errs.Timeout)
		}
		return nil, err
	}
	return conn, nil
}

// attach makes conn the live connection, replays the joined rooms on it
// and starts reading. It fails with errSuperseded when Disconnect ran since
// epoch was taken. The caller publishes the state change once its locks
// are released.
func (s *Session) attach(ctx context.Context, conn Conn, epoch uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		_ = conn.Close()
		return errSuperseded
	}
	rooms := s.roomsLocked()
	s.mu.Unlock()

	for _, room := range rooms {
		if err := s.write(ctx, conn, EventJoinRoom, room); err != nil {
			_ = conn.Close()
			return fmt.Errorf("rejoin room %s: %w", room, err)
		}
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		_ = conn.Close()
		return errSuperseded
	}
	readCtx, cancel := context.WithCancel(context.Background())
	s.conn = conn
	s.readCancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.read(readCtx, conn)

	s.logger.Info("connected", "rooms", len(rooms))
	return nil
}

func (s *Session) write(ctx context.Context, conn Conn, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json marshal %s payload: %w", event, err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return conn.Write(ctx, Frame{Event: event, Data: data})
}

func (s *Session) read(ctx context.Context, conn Conn) {
	defer s.wg.Done()

	for {
		f, err := conn.Read(ctx)
		if err != nil {
			s.lost(conn, err)
			return
		}

		s.handle(f)
	}
}

func (s *Session) handle(f Frame) {
	d, err := ingest.Decode(f.Event, f.Data)
	if errors.Is(err, ingest.ErrUnknownEvent) {
		s.logger.Debug("ignoring unknown event", "event", f.Event)
		return
	}
	if err != nil {
		s.logger.Warn("dropping malformed event", "event", f.Event, "err", err)
		return
	}

	s.cfg.Registry.Dispatch(d.Category, d.Payload, d.Subtype)
}

// lost detaches conn after a read failure and starts reconnecting, unless
// conn was already replaced or torn down.
func (s *Session) lost(conn Conn, err error) {
	s.mu.Lock()
	if s.conn != conn {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.readCancel()
	s.readCancel = nil
	epoch := s.epoch
	s.mu.Unlock()

	_ = conn.Close()

	if errs.IsUnauthenticated(err) {
		s.logger.Error("connection rejected", "err", err)
		s.setState(StateFailed)
		s.report(fmt.Errorf("connection rejected: %w", err))
		return
	}

	s.logger.Warn("connection lost", "err", err)
	s.startReconnect(epoch)
}

func (s *Session) startReconnect(epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch || s.loop != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	loop := &reconnectLoop{cancel: cancel}
	s.loop = loop
	s.wg.Add(1)
	s.mu.Unlock()

	s.setState(StateReconnecting)

	go s.reconnect(ctx, loop, epoch)
}

func (s *Session) stopReconnectLocked() {
	if s.loop != nil {
		s.loop.cancel()
		s.loop = nil
	}
}

func (s *Session) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.ReconnectDelay
	b.MaxInterval = s.cfg.ReconnectDelayMax
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// reconnect waits one delay and then makes up to ReconnectAttempts dial
// attempts with exponential backoff between them.
func (s *Session) reconnect(ctx context.Context, loop *reconnectLoop, epoch uint64) {
	defer s.wg.Done()

	defer func() {
		s.mu.Lock()
		if s.loop == loop {
			s.loop = nil
		}
		s.mu.Unlock()
		loop.cancel()
	}()

	t := time.NewTimer(s.cfg.ReconnectDelay)
	select {
	case <-ctx.Done():
		t.Stop()
		return
	case <-t.C:
	}

	var (
		attempt  uint64
		attached Conn
	)
	op := func() error {
		attempt++
		s.cfg.Metrics.ReconnectAttempt()

		s.dialMu.Lock()
		defer s.dialMu.Unlock()

		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		s.mu.Lock()
		if s.conn != nil {
			s.mu.Unlock()
			return nil
		}
		cred := s.cred
		s.mu.Unlock()

		conn, err := s.dial(ctx, cred)
		if err != nil {
			if errs.IsUnauthenticated(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		if err := s.attach(ctx, conn, epoch); err != nil {
			if errors.Is(err, errSuperseded) {
				return backoff.Permanent(err)
			}
			return err
		}
		attached = conn
		return nil
	}

	notify := func(err error, next time.Duration) {
		s.logger.Warn("reconnect attempt failed", "attempt", attempt, "retry_in", next, "err", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.cfg.ReconnectAttempts-1), ctx)
	err := backoff.RetryNotify(op, b, notify)
	if err == nil {
		if attached != nil {
			s.markConnected(attached)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}

	s.logger.Error("reconnect gave up", "attempts", attempt, "err", err)
	s.setState(StateFailed)
	s.report(fmt.Errorf("reconnect after %d attempts: %w", attempt, err))
}

// Join records conversationID as joined and announces it when connected.
// Joined rooms are announced again after every reconnection.
func (s *Session) Join(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	_, joined := s.rooms[conversationID]
	s.rooms[conversationID] = struct{}{}
	s.mu.Unlock()

	if joined {
		return nil
	}

	if err := s.Emit(ctx, EventJoinRoom, conversationID); err != nil && !errors.Is(err, errs.NotConnected) {
		return err
	}
	return nil
}

func (s *Session) Leave(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	_, joined := s.rooms[conversationID]
	delete(s.rooms, conversationID)
	s.mu.Unlock()

	if !joined {
		return nil
	}

	if err := s.Emit(ctx, EventLeaveRoom, conversationID); err != nil && !errors.Is(err, errs.NotConnected) {
		return err
	}
	return nil
}

// Emit sends one outbound event. Without a live connection it fails with
// errs.NotConnected and nothing is queued.
func (s *Session) Emit(ctx context.Context, event string, payload any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return errs.NotConnected
	}

	if err := s.write(ctx, conn, event, payload); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// Disconnect tears the connection down, stops any reconnection and forgets
// the joined rooms. It is safe to call at any time, any number of times.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.epoch++
	conn := s.conn
	s.conn = nil
	if s.readCancel != nil {
		s.readCancel()
		s.readCancel = nil
	}
	s.stopReconnectLocked()
	s.cred = types.Credential{}
	clear(s.rooms)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	s.setState(StateDisconnected)
}

// Close disconnects and waits for the background goroutines to return.
func (s *Session) Close() error {
	s.Disconnect()
	s.wg.Wait()
	return nil
}
