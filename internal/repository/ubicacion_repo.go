package repository

import (
	"context"

	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/store"
)

// UbicacionRepository reads and writes the three levels of the location
// hierarchy. Listings are ordered by nombre and fetched whole.
type UbicacionRepository interface {
	Paises(ctx context.Context) ([]model.Pais, error)
	Estados(ctx context.Context, paisID string) ([]model.Estado, error)
	Ciudades(ctx context.Context, estadoID string) ([]model.Ciudad, error)

	Pais(ctx context.Context, id string) (*model.Pais, error)
	Estado(ctx context.Context, id string) (*model.Estado, error)
	Ciudad(ctx context.Context, id string) (*model.Ciudad, error)

	CrearPais(ctx context.Context, p *model.Pais) error
	CrearEstado(ctx context.Context, e *model.Estado) error
	CrearCiudad(ctx context.Context, c *model.Ciudad) error

	Actualizar(ctx context.Context, coleccion, id string, campos map[string]any) error
	Eliminar(ctx context.Context, coleccion, id string) error
	Contar(ctx context.Context, coleccion string) (int, error)
}

type ubicacionRepo struct {
	paises   *store.Collection[model.Pais]
	estados  *store.Collection[model.Estado]
	ciudades *store.Collection[model.Ciudad]
}

func NewUbicacionRepository(cols *Colecciones) UbicacionRepository {
	return &ubicacionRepo{paises: cols.Paises, estados: cols.Estados, ciudades: cols.Ciudades}
}

func (r *ubicacionRepo) Paises(ctx context.Context) ([]model.Pais, error) {
	page, err := r.paises.List(ctx, porNombre)
	return page.Items, err
}

// Estados lists every estado when paisID is empty.
func (r *ubicacionRepo) Estados(ctx context.Context, paisID string) ([]model.Estado, error) {
	var where []store.Clause
	if paisID != "" {
		where = append(where, store.Where("pais_id", store.Igual, paisID))
	}
	page, err := r.estados.Find(ctx, where, porNombre)
	return page.Items, err
}

// Ciudades lists every ciudad when estadoID is empty.
func (r *ubicacionRepo) Ciudades(ctx context.Context, estadoID string) ([]model.Ciudad, error) {
	var where []store.Clause
	if estadoID != "" {
		where = append(where, store.Where("estado_id", store.Igual, estadoID))
	}
	page, err := r.ciudades.Find(ctx, where, porNombre)
	return page.Items, err
}

func (r *ubicacionRepo) Pais(ctx context.Context, id string) (*model.Pais, error) {
	return r.paises.GetByID(ctx, id)
}

func (r *ubicacionRepo) Estado(ctx context.Context, id string) (*model.Estado, error) {
	return r.estados.GetByID(ctx, id)
}

func (r *ubicacionRepo) Ciudad(ctx context.Context, id string) (*model.Ciudad, error) {
	return r.ciudades.GetByID(ctx, id)
}

func (r *ubicacionRepo) CrearPais(ctx context.Context, p *model.Pais) error {
	id, err := r.paises.Create(ctx, *p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *ubicacionRepo) CrearEstado(ctx context.Context, e *model.Estado) error {
	id, err := r.estados.Create(ctx, *e)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *ubicacionRepo) CrearCiudad(ctx context.Context, c *model.Ciudad) error {
	id, err := r.ciudades.Create(ctx, *c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *ubicacionRepo) Actualizar(ctx context.Context, coleccion, id string, campos map[string]any) error {
	switch coleccion {
	case model.ColeccionPaises:
		return r.paises.Update(ctx, id, campos)
	case model.ColeccionEstados:
		return r.estados.Update(ctx, id, campos)
	default:
		return r.ciudades.Update(ctx, id, campos)
	}
}

func (r *ubicacionRepo) Eliminar(ctx context.Context, coleccion, id string) error {
	switch coleccion {
	case model.ColeccionPaises:
		return r.paises.Delete(ctx, id)
	case model.ColeccionEstados:
		return r.estados.Delete(ctx, id)
	default:
		return r.ciudades.Delete(ctx, id)
	}
}

func (r *ubicacionRepo) Contar(ctx context.Context, coleccion string) (int, error) {
	switch coleccion {
	case model.ColeccionPaises:
		return r.paises.Count(ctx)
	case model.ColeccionEstados:
		return r.estados.Count(ctx)
	default:
		return r.ciudades.Count(ctx)
	}
}
