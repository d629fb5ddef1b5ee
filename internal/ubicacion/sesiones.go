package ubicacion

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Sesiones keeps one open Selector per user and closes the ones left idle.
type Sesiones struct {
	deps Dependencias
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	abiertos map[string]*entrada
}

type entrada struct {
	sel   *Selector
	usado time.Time
}

// NewSesiones creates a registry. ttl is the idle time after which Purgar
// closes a selector.
func NewSesiones(deps Dependencias, ttl time.Duration) *Sesiones {
	return &Sesiones{
		deps:     deps,
		ttl:      ttl,
		now:      time.Now,
		abiertos: make(map[string]*entrada),
	}
}

// Obtener returns the user's selector, opening it on first use.
func (s *Sesiones) Obtener(ctx context.Context, usuarioID string) (*Selector, error) {
	s.mu.Lock()
	if e, ok := s.abiertos[usuarioID]; ok {
		e.usado = s.now()
		s.mu.Unlock()
		return e.sel, nil
	}
	s.mu.Unlock()

	sel, err := Abrir(ctx, usuarioID, s.deps)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if e, ok := s.abiertos[usuarioID]; ok {
		// another request opened one meanwhile
		e.usado = s.now()
		existente := e.sel
		s.mu.Unlock()
		sel.Cerrar()
		return existente, nil
	}
	s.abiertos[usuarioID] = &entrada{sel: sel, usado: s.now()}
	s.mu.Unlock()
	return sel, nil
}

// Cerrar closes and forgets the user's selector, if any.
func (s *Sesiones) Cerrar(usuarioID string) bool {
	s.mu.Lock()
	e, ok := s.abiertos[usuarioID]
	delete(s.abiertos, usuarioID)
	s.mu.Unlock()
	if ok {
		e.sel.Cerrar()
	}
	return ok
}

// Purgar closes every selector idle for longer than the ttl and returns how many.
func (s *Sesiones) Purgar() int {
	limite := s.now().Add(-s.ttl)
	var viejos []*Selector

	s.mu.Lock()
	for id, e := range s.abiertos {
		if e.usado.Before(limite) {
			viejos = append(viejos, e.sel)
			delete(s.abiertos, id)
		}
	}
	s.mu.Unlock()

	for _, sel := range viejos {
		sel.Cerrar()
	}
	return len(viejos)
}

// Len returns the number of open selectors.
func (s *Sesiones) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.abiertos)
}

// CerrarTodos closes every open selector.
func (s *Sesiones) CerrarTodos() {
	s.mu.Lock()
	abiertos := s.abiertos
	s.abiertos = make(map[string]*entrada)
	s.mu.Unlock()

	for _, e := range abiertos {
		e.sel.Cerrar()
	}
}

// Run purges idle selectors every interval until ctx is done, then closes all.
func (s *Sesiones) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.CerrarTodos()
			return
		case <-ticker.C:
			if n := s.Purgar(); n > 0 {
				log.Debug().Str("component", "ubicacion").Int("cerrados", n).Msg("selectores inactivos cerrados")
			}
		}
	}
}
