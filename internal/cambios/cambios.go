// Package cambios fans out change notifications for store collections.
//
// Mutations publish an Evento; live views hold a Suscripcion and refetch
// when something they display changes. A Suscripcion is owned by whoever
// called Subscribe and must be closed exactly once by that owner; Close is
// idempotent so deferred and explicit closes can coexist.
package cambios

import (
	"context"
	"sync"
	"sync/atomic"
)

// Operacion is the kind of mutation that produced an Evento.
type Operacion string

const (
	Creado      Operacion = "creado"
	Actualizado Operacion = "actualizado"
	Eliminado   Operacion = "eliminado"
)

// Evento describes one successful mutation of a document.
type Evento struct {
	Coleccion string    `json:"coleccion"`
	Operacion Operacion `json:"operacion"`
	ID        string    `json:"id"`
}

// Publisher accepts change events.
type Publisher interface {
	Publish(ctx context.Context, ev Evento) error
}

const defaultBuffer = 32

// Hub is an in-process Publisher that fans events out to subscriptions.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Suscripcion]struct{}
	buffer int
	closed bool
}

// NewHub creates an empty hub. buffer is the per-subscription channel size.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{subs: make(map[*Suscripcion]struct{}), buffer: buffer}
}

// Publish delivers ev to every matching subscription without blocking.
// A subscription whose buffer is full misses the event and is flagged.
func (h *Hub) Publish(_ context.Context, ev Evento) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.matches(ev.Coleccion) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			s.perdidos.Store(true)
		}
	}
	return nil
}

// Subscribe registers interest in the given collections (none means all).
// Subscribing to a closed hub returns an already closed subscription.
func (h *Hub) Subscribe(colecciones ...string) *Suscripcion {
	s := &Suscripcion{hub: h, ch: make(chan Evento, h.buffer)}
	if len(colecciones) > 0 {
		s.filtro = make(map[string]struct{}, len(colecciones))
		for _, c := range colecciones {
			s.filtro[c] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close closes every open subscription. Later subscriptions start closed.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Suscripcion]struct{})
	h.closed = true
	h.mu.Unlock()

	for s := range subs {
		s.once.Do(func() { close(s.ch) })
	}
}

func (h *Hub) remove(s *Suscripcion) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Suscripcion is a handle to a stream of events.
type Suscripcion struct {
	hub      *Hub
	filtro   map[string]struct{}
	ch       chan Evento
	once     sync.Once
	perdidos atomic.Bool
}

// Eventos is closed when the subscription is closed.
func (s *Suscripcion) Eventos() <-chan Evento { return s.ch }

// PerdioEventos reports, and resets, whether events were dropped since the
// last call. Owners should refetch everything when it returns true.
func (s *Suscripcion) PerdioEventos() bool { return s.perdidos.Swap(false) }

// Close detaches the subscription from its hub and closes the channel.
func (s *Suscripcion) Close() {
	s.once.Do(func() {
		// remove takes the write lock, so no Publish is mid-send on ch below.
		s.hub.remove(s)
		close(s.ch)
	})
}

func (s *Suscripcion) matches(coleccion string) bool {
	if s.filtro == nil {
		return true
	}
	_, ok := s.filtro[coleccion]
	return ok
}

// Multi publishes to several publishers and returns the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Evento) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
