package repository

import (
	"context"

	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/store"
)

// CatalogoRepository serves the read-only lugares, eventos and productos collections.
type CatalogoRepository interface {
	LugaresPorNegocio(ctx context.Context, negocioID string) ([]model.Lugar, error)
	EventosPorLugar(ctx context.Context, lugarID string) ([]model.Evento, error)
	ProductosPorNegocio(ctx context.Context, negocioID string) ([]model.Producto, error)
}

type catalogoRepo struct {
	lugares   *store.Collection[model.Lugar]
	eventos   *store.Collection[model.Evento]
	productos *store.Collection[model.Producto]
}

func NewCatalogoRepository(cols *Colecciones) CatalogoRepository {
	return &catalogoRepo{lugares: cols.Lugares, eventos: cols.Eventos, productos: cols.Productos}
}

func (r *catalogoRepo) LugaresPorNegocio(ctx context.Context, negocioID string) ([]model.Lugar, error) {
	page, err := r.lugares.Find(ctx, []store.Clause{store.Where("negocio_id", store.Igual, negocioID)}, nil)
	return page.Items, err
}

// EventosPorLugar orders by fecha, oldest first.
func (r *catalogoRepo) EventosPorLugar(ctx context.Context, lugarID string) ([]model.Evento, error) {
	page, err := r.eventos.Find(ctx,
		[]store.Clause{store.Where("lugar_id", store.Igual, lugarID)},
		&store.Pagination{OrderBy: "fecha"})
	return page.Items, err
}

func (r *catalogoRepo) ProductosPorNegocio(ctx context.Context, negocioID string) ([]model.Producto, error) {
	page, err := r.productos.Find(ctx,
		[]store.Clause{store.Where("negocio_id", store.Igual, negocioID)},
		porNombre)
	return page.Items, err
}
