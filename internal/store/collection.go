package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/cambios"
)

// Pagination selects one page of a listing. A zero PageSize returns every
// matching document in a single page.
type Pagination struct {
	PageSize  int
	Cursor    string
	OrderBy   string
	Direccion Direccion
}

// Page is one page of results. Cursor is empty on the last page.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Cursor string `json:"cursor,omitempty"`
}

// Collection is the typed client for one named collection.
type Collection[T any] struct {
	nombre  string
	backend Backend
	conv    Converter[T]
	pub     cambios.Publisher
}

// NewCollection binds a collection name to a backend. pub may be nil; when
// set it receives an event after every successful mutation.
func NewCollection[T any](backend Backend, nombre string, pub cambios.Publisher) *Collection[T] {
	return &Collection[T]{nombre: nombre, backend: backend, pub: pub}
}

// Nombre returns the collection name.
func (c *Collection[T]) Nombre() string { return c.nombre }

// List returns a page of the whole collection.
func (c *Collection[T]) List(ctx context.Context, p *Pagination) (Page[T], error) {
	return c.query(ctx, OpList, nil, p)
}

// Find returns a page of the documents matching every clause.
func (c *Collection[T]) Find(ctx context.Context, where []Clause, p *Pagination) (Page[T], error) {
	return c.query(ctx, OpQuery, where, p)
}

// Count returns the number of documents matching every clause.
func (c *Collection[T]) Count(ctx context.Context, where ...Clause) (int, error) {
	docs, err := c.backend.Query(ctx, c.nombre, Query{Where: where})
	if err != nil {
		return 0, wrap(OpQuery, c.nombre, "", err)
	}
	return len(docs), nil
}

// GetByID returns nil, nil when the document does not exist.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, nil
	}
	doc, err := c.backend.Get(ctx, c.nombre, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, wrap(OpGet, c.nombre, id, err)
	}
	item, err := c.conv.FromDocument(doc)
	if err != nil {
		return nil, wrap(OpGet, c.nombre, id, err)
	}
	return &item, nil
}

// Create stores v and returns the id assigned by the backend.
func (c *Collection[T]) Create(ctx context.Context, v T) (string, error) {
	datos, err := c.conv.ToDocument(v)
	if err != nil {
		return "", wrap(OpCreate, c.nombre, "", err)
	}
	id, err := c.backend.Add(ctx, c.nombre, datos)
	if err != nil {
		return "", wrap(OpCreate, c.nombre, "", err)
	}
	c.notify(ctx, cambios.Creado, id)
	return id, nil
}

// Update merges campos into the stored document. Fields not named are left
// untouched. Updating a missing document fails with a not-found cause.
func (c *Collection[T]) Update(ctx context.Context, id string, campos map[string]any) error {
	patch := make(map[string]any, len(campos))
	for k, v := range campos {
		if k == CampoID {
			continue
		}
		patch[k] = v
	}
	if len(patch) == 0 {
		return nil
	}
	if err := c.backend.Update(ctx, c.nombre, id, patch); err != nil {
		return wrap(OpUpdate, c.nombre, id, err)
	}
	c.notify(ctx, cambios.Actualizado, id)
	return nil
}

// Delete removes the document. Deleting a missing document succeeds.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.backend.Delete(ctx, c.nombre, id); err != nil {
		return wrap(OpDelete, c.nombre, id, err)
	}
	c.notify(ctx, cambios.Eliminado, id)
	return nil
}

// Document encodes v with the collection's converter. It is how callers
// build a full-record patch for Update.
func (c *Collection[T]) Document(v T) (map[string]any, error) {
	return c.conv.ToDocument(v)
}

func (c *Collection[T]) query(ctx context.Context, op Op, where []Clause, p *Pagination) (Page[T], error) {
	if p == nil {
		p = &Pagination{}
	}
	for _, cl := range where {
		if !cl.Operador.Valid() {
			return Page[T]{}, wrap(op, c.nombre, "", fmt.Errorf("operador no soportado %q", cl.Operador))
		}
	}
	after, err := DecodeCursor(p.Cursor)
	if err != nil {
		return Page[T]{}, wrap(op, c.nombre, "", err)
	}
	dir := p.Direccion
	if dir == "" {
		dir = Asc
	}
	q := Query{Where: where, OrderBy: p.OrderBy, Direccion: dir, After: after}
	if p.PageSize > 0 {
		// one extra document tells whether another page exists
		q.Limit = p.PageSize + 1
	}

	docs, err := c.backend.Query(ctx, c.nombre, q)
	if err != nil {
		return Page[T]{}, wrap(op, c.nombre, "", err)
	}

	var cursor string
	if p.PageSize > 0 && len(docs) > p.PageSize {
		docs = docs[:p.PageSize]
		last := docs[len(docs)-1]
		next := Cursor{ID: last.ID}
		if p.OrderBy != "" {
			v, _ := Lookup(last.Datos, p.OrderBy)
			next.Valor = Normalize(v)
		}
		cursor = next.Encode()
	}

	items := make([]T, 0, len(docs))
	for _, d := range docs {
		item, err := c.conv.FromDocument(d)
		if err != nil {
			return Page[T]{}, wrap(op, c.nombre, d.ID, err)
		}
		items = append(items, item)
	}
	return Page[T]{Items: items, Cursor: cursor}, nil
}

func (c *Collection[T]) notify(ctx context.Context, op cambios.Operacion, id string) {
	if c.pub == nil {
		return
	}
	ev := cambios.Evento{Coleccion: c.nombre, Operacion: op, ID: id}
	if err := c.pub.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("coleccion", c.nombre).Str("id", id).Msg("no se pudo publicar el cambio")
	}
}
