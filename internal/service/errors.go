package service

import (
	"errors"

	"github.com/juliosincable/infourbi/internal/store"
)

var (
	ErrNoEncontrado  = errors.New("recurso no encontrado")
	ErrPadreNoExiste = errors.New("el registro padre no existe")
	ErrColeccion     = errors.New("colección desconocida")
)

func isNotFound(err error) bool {
	return err != nil && store.IsNotFound(err)
}
