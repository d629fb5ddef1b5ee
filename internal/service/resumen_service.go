package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/store"
)

// Contable is any collection that can count its documents.
type Contable interface {
	Nombre() string
	Count(ctx context.Context, where ...store.Clause) (int, error)
}

// ResumenService backs the management page: how many documents each
// collection holds.
type ResumenService interface {
	Conteos(ctx context.Context) (map[string]int, error)
}

type resumenService struct{ cols []Contable }

func NewResumenService(c *repository.Colecciones) ResumenService {
	return &resumenService{cols: []Contable{
		c.Paises, c.Estados, c.Ciudades, c.Negocios, c.Lugares, c.Eventos, c.Productos, c.Usuarios,
	}}
}

// Conteos counts the collections concurrently; the first failure cancels
// the rest.
func (s *resumenService) Conteos(ctx context.Context) (map[string]int, error) {
	conteos := make([]int, len(s.cols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, col := range s.cols {
		g.Go(func() error {
			n, err := col.Count(gctx)
			conteos[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(s.cols))
	for i, col := range s.cols {
		out[col.Nombre()] = conteos[i]
	}
	return out, nil
}
