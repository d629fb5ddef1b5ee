package store

import (
	"errors"
	"fmt"
)

var (
	// ErrFailed matches every *OpError via errors.Is.
	ErrFailed = errors.New("operación del store falló")
	// ErrNotFound is the cause reported by backends for a missing document.
	ErrNotFound = errors.New("documento no encontrado")
	// ErrCursor is returned for a cursor that cannot be decoded.
	ErrCursor = errors.New("cursor inválido")
)

// Op names a Collection operation.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpQuery  Op = "query"
)

// OpError wraps a backend failure at the operation boundary.
type OpError struct {
	Op        Op
	Coleccion string
	ID        string
	Err       error
}

func (e *OpError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s %s/%s: %v", ErrFailed, e.Op, e.Coleccion, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrFailed, e.Op, e.Coleccion, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFailed) hold for every OpError.
func (e *OpError) Is(target error) bool { return target == ErrFailed }

// Mensaje is the user-facing text for the failed operation.
func (e *OpError) Mensaje() string {
	switch e.Op {
	case OpList, OpQuery:
		return "No se pudieron obtener los documentos."
	case OpGet:
		return "No se pudo obtener el documento."
	case OpCreate:
		return "No se pudo agregar el documento."
	case OpUpdate:
		if errors.Is(e.Err, ErrNotFound) {
			return "El documento no existe."
		}
		return "No se pudo actualizar el documento."
	case OpDelete:
		return "No se pudo eliminar el documento."
	default:
		return "Error del almacenamiento."
	}
}

// IsNotFound reports whether err was caused by a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func wrap(op Op, coleccion, id string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Coleccion: coleccion, ID: id, Err: err}
}
