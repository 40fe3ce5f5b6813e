package dispatch

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nakamauwu/chatsync/metrics"
)

type Callback func(payload any, subtype string)

type entry struct {
	id string
	fn Callback
}

// Registry maps each event category to the callbacks registered for it.
// Callbacks of one category run in registration order and a panicking
// callback never keeps the others from running.
type Registry struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	bus     *Bus

	mu      sync.RWMutex
	entries map[Category][]entry
	errs    chan error
}

func NewRegistry(logger *slog.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		metrics: m,
		bus:     NewBus(logger),
		entries: map[Category][]entry{},
		errs:    make(chan error, 1),
	}
}

// Bus is the publish/subscribe channel components use to ask peers for a
// refresh or to observe state changes.
func (r *Registry) Bus() *Bus {
	return r.bus
}

// Errs reports callback panics. Sends never block; when nobody drains the
// channel extra errors are only logged.
func (r *Registry) Errs() <-chan error {
	return r.errs
}

// Register stores fn under id within category, replacing any callback
// already registered with that id. An empty id gets a generated one.
// The returned func unregisters it.
func (r *Registry) Register(category Category, id string, fn Callback) (string, func()) {
	if id == "" {
		id = gonanoid.Must()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[category]
	if i := slices.IndexFunc(list, func(e entry) bool { return e.id == id }); i >= 0 {
		list[i].fn = fn
	} else {
		r.entries[category] = append(list, entry{id: id, fn: fn})
	}

	return id, func() { r.Unregister(category, id) }
}

func (r *Registry) Unregister(category Category, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[category]
	i := slices.IndexFunc(list, func(e entry) bool { return e.id == id })
	if i < 0 {
		return
	}

	r.entries[category] = slices.Delete(slices.Clone(list), i, i+1)
	if len(r.entries[category]) == 0 {
		delete(r.entries, category)
	}
}

func (r *Registry) Len(category Category) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[category])
}

// Dispatch calls every callback registered for category. Callbacks run
// outside the registry lock so they may register or unregister.
func (r *Registry) Dispatch(category Category, payload any, subtype string) {
	r.mu.RLock()
	list := slices.Clone(r.entries[category])
	r.mu.RUnlock()

	r.metrics.EventDispatched(category.String())

	for _, e := range list {
		r.call(category, e, payload, subtype)
	}
}

func (r *Registry) call(category Category, e entry, payload any, subtype string) {
	defer func() {
		if rcv := recover(); rcv != nil {
			err := fmt.Errorf("dispatch %s callback %s panic: %v", category, e.id, rcv)
			r.metrics.CallbackFailed(category.String())
			r.logger.Error("dispatch callback failed", "category", category, "id", e.id, "error", err)
			select {
			case r.errs <- err:
			default:
			}
		}
	}()

	e.fn(payload, subtype)
}

// On registers a typed callback. Payloads of another type are logged and
// skipped.
func On[T any](r *Registry, category Category, id string, fn func(payload T, subtype string)) (string, func()) {
	return r.Register(category, id, func(payload any, subtype string) {
		v, ok := payload.(T)
		if !ok {
			r.logger.Warn("dispatch payload type mismatch",
				"category", category,
				"want", fmt.Sprintf("%T", *new(T)),
				"got", fmt.Sprintf("%T", payload))
			return
		}
		fn(v, subtype)
	})
}
