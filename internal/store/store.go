// Package store is a generic client over a schema-free document store.
//
// A Backend moves untyped documents (map[string]any) in and out of a named
// collection. Collection[T] layers the typed contract on top of it: the
// Converter maps T to and from documents, pagination is cursor based and
// every backend failure comes back as an *OpError.
package store

import (
	"context"
)

// Operador is a comparison operator used in query clauses.
type Operador string

const (
	Igual         Operador = "=="
	Distinto      Operador = "!="
	Menor         Operador = "<"
	MenorIgual    Operador = "<="
	Mayor         Operador = ">"
	MayorIgual    Operador = ">="
	En            Operador = "in"
	ArrayContiene Operador = "array-contains"
)

// Valid reports whether op is one of the supported operators.
func (op Operador) Valid() bool {
	switch op {
	case Igual, Distinto, Menor, MenorIgual, Mayor, MayorIgual, En, ArrayContiene:
		return true
	}
	return false
}

// Direccion is the sort direction of a query.
type Direccion string

const (
	Asc  Direccion = "asc"
	Desc Direccion = "desc"
)

// Clause is a single (field, operator, value) filter. Clauses in a query are ANDed.
type Clause struct {
	Campo    string
	Operador Operador
	Valor    any
}

// Where builds a Clause.
func Where(campo string, op Operador, valor any) Clause {
	return Clause{Campo: campo, Operador: op, Valor: valor}
}

// Query is what a Backend executes. Results are ordered by OrderBy and then
// by document id, start strictly after After and hold at most Limit documents
// (0 means no limit).
type Query struct {
	Where     []Clause
	OrderBy   string
	Direccion Direccion
	Limit     int
	After     *Cursor
}

// Documento is a raw stored document. Datos never carries the id.
type Documento struct {
	ID    string
	Datos map[string]any
}

// Backend is implemented by every storage driver. Get and Update return an
// error wrapping ErrNotFound for a missing document; Delete of a missing
// document is a no-op.
type Backend interface {
	Get(ctx context.Context, coleccion, id string) (Documento, error)
	Add(ctx context.Context, coleccion string, datos map[string]any) (string, error)
	Update(ctx context.Context, coleccion, id string, campos map[string]any) error
	Delete(ctx context.Context, coleccion, id string) error
	Query(ctx context.Context, coleccion string, q Query) ([]Documento, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
