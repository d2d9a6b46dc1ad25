package forecast

import (
	"sync"

	"github.com/google/uuid"
)

// Handler is a data-changed callback. It carries no payload; a handler
// re-reads whatever view it needs from the Service. Handlers run
// synchronously on the goroutine that raised the notification and must
// hand work off to their own goroutine if they need a particular context.
type Handler func()

// Subscription identifies a registered handler.
type Subscription struct {
	ID uuid.UUID
}

// Valid reports whether the subscription refers to a registration.
func (s Subscription) Valid() bool {
	return s.ID != uuid.Nil
}

type registration struct {
	id      uuid.UUID
	handler Handler
}

// registry keeps handlers in registration order.
type registry struct {
	mu       sync.Mutex
	handlers []registration
}

func (r *registry) add(h Handler) Subscription {
	id := uuid.New()

	r.mu.Lock()
	r.handlers = append(r.handlers, registration{id: id, handler: h})
	r.mu.Unlock()

	return Subscription{ID: id}
}

func (r *registry) remove(sub Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.handlers {
		if reg.id != sub.ID {
			continue
		}
		next := make([]registration, 0, len(r.handlers)-1)
		next = append(next, r.handlers[:i]...)
		next = append(next, r.handlers[i+1:]...)
		r.handlers = next
		return true
	}
	return false
}

// snapshot returns the current handlers. The returned slice is never
// modified afterwards, so callers may iterate it without holding the lock.
func (r *registry) snapshot() []registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
