// Package memstore is an in-memory store.Backend for tests and local development.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/juliosincable/infourbi/internal/store"
)

// Store keeps every collection in memory. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	cols  map[string]map[string]map[string]any
	err   error
	newID func() string
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		cols:  make(map[string]map[string]map[string]any),
		newID: uuid.NewString,
	}
}

// SetError makes every following operation fail with err (nil clears it).
func (s *Store) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Seed stores datos under a caller-chosen id.
func (s *Store) Seed(coleccion, id string, datos map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.col(coleccion)[id] = copyMap(datos)
}

func (s *Store) Get(ctx context.Context, coleccion, id string) (store.Documento, error) {
	if err := ctx.Err(); err != nil {
		return store.Documento{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return store.Documento{}, s.err
	}
	datos, ok := s.cols[coleccion][id]
	if !ok {
		return store.Documento{}, fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	return store.Documento{ID: id, Datos: copyMap(datos)}, nil
}

func (s *Store) Add(ctx context.Context, coleccion string, datos map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	id := s.newID()
	s.col(coleccion)[id] = copyMap(datos)
	return id, nil
}

func (s *Store) Update(ctx context.Context, coleccion, id string, campos map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	datos, ok := s.cols[coleccion][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	for k, v := range campos {
		datos[k] = copyValue(v)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, coleccion, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.cols[coleccion], id)
	return nil
}

func (s *Store) Query(ctx context.Context, coleccion string, q store.Query) ([]store.Documento, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	docs := make([]store.Documento, 0, len(s.cols[coleccion]))
	for id, datos := range s.cols[coleccion] {
		docs = append(docs, store.Documento{ID: id, Datos: datos})
	}
	docs = store.Evaluar(docs, q)

	out := make([]store.Documento, len(docs))
	for i, d := range docs {
		out[i] = store.Documento{ID: d.ID, Datos: copyMap(d.Datos)}
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) col(nombre string) map[string]map[string]any {
	c, ok := s.cols[nombre]
	if !ok {
		c = make(map[string]map[string]any)
		s.cols[nombre] = c
	}
	return c
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
