package repository

import (
	"context"

	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/store"
)

// finPrefijo is the highest code point in the BMP private use area; appended
// to a prefix it bounds a range query on every string starting with it.
const finPrefijo = "\uf8ff"

type NegocioRepository interface {
	List(ctx context.Context, p store.Pagination) (store.Page[model.Negocio], error)
	BuscarPorPrefijo(ctx context.Context, prefijo string, p store.Pagination) (store.Page[model.Negocio], error)
	ByPropietario(ctx context.Context, propietarioID string) ([]model.Negocio, error)
	FindByID(ctx context.Context, id string) (*model.Negocio, error)
	Create(ctx context.Context, n *model.Negocio) error
	Update(ctx context.Context, id string, campos map[string]any) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Documento(n model.Negocio) (map[string]any, error)
}

type negocioRepo struct{ col *store.Collection[model.Negocio] }

func NewNegocioRepository(col *store.Collection[model.Negocio]) NegocioRepository {
	return &negocioRepo{col: col}
}

func (r *negocioRepo) List(ctx context.Context, p store.Pagination) (store.Page[model.Negocio], error) {
	if p.OrderBy == "" {
		p.OrderBy = "nombre"
	}
	return r.col.List(ctx, &p)
}

// BuscarPorPrefijo matches nombre by case-sensitive prefix on the store side.
func (r *negocioRepo) BuscarPorPrefijo(ctx context.Context, prefijo string, p store.Pagination) (store.Page[model.Negocio], error) {
	p.OrderBy = "nombre"
	return r.col.Find(ctx, []store.Clause{
		store.Where("nombre", store.MayorIgual, prefijo),
		store.Where("nombre", store.MenorIgual, prefijo+finPrefijo),
	}, &p)
}

func (r *negocioRepo) ByPropietario(ctx context.Context, propietarioID string) ([]model.Negocio, error) {
	page, err := r.col.Find(ctx, []store.Clause{store.Where("propietario_id", store.Igual, propietarioID)}, nil)
	return page.Items, err
}

func (r *negocioRepo) FindByID(ctx context.Context, id string) (*model.Negocio, error) {
	return r.col.GetByID(ctx, id)
}

func (r *negocioRepo) Create(ctx context.Context, n *model.Negocio) error {
	id, err := r.col.Create(ctx, *n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *negocioRepo) Update(ctx context.Context, id string, campos map[string]any) error {
	return r.col.Update(ctx, id, campos)
}

func (r *negocioRepo) Delete(ctx context.Context, id string) error {
	return r.col.Delete(ctx, id)
}

func (r *negocioRepo) Count(ctx context.Context) (int, error) {
	return r.col.Count(ctx)
}

func (r *negocioRepo) Documento(n model.Negocio) (map[string]any, error) {
	return r.col.Document(n)
}
