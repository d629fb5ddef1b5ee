package service

import (
	"context"
	"strings"

	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/negocio"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/store"
)

// NegocioService defines business operations for negocio listings.
type NegocioService interface {
	Listar(ctx context.Context, q string, p store.Pagination) (dto.NegocioPageResponse, error)
	Obtener(ctx context.Context, id string) (model.Negocio, error)
	Ficha(ctx context.Context, id string) (dto.FichaResponse, error)
	Crear(ctx context.Context, req dto.NegocioRequest, propietarioID string) (model.Negocio, error)
	Actualizar(ctx context.Context, id string, req dto.NegocioRequest) (model.Negocio, error)
	EditarFormulario(ctx context.Context, id string, req dto.FormularioRequest) (model.Negocio, error)
	Eliminar(ctx context.Context, id string) error

	Lugares(ctx context.Context, negocioID string) ([]model.Lugar, error)
	Productos(ctx context.Context, negocioID string) ([]model.Producto, error)
	Eventos(ctx context.Context, lugarID string) ([]model.Evento, error)
	DePropietario(ctx context.Context, usuarioID string) ([]model.Negocio, error)
}

type negocioService struct {
	repo     repository.NegocioRepository
	catalogo repository.CatalogoRepository
}

func NewNegocioService(repo repository.NegocioRepository, catalogo repository.CatalogoRepository) NegocioService {
	return &negocioService{repo: repo, catalogo: catalogo}
}

// Listar returns a page of negocios ordered by nombre. A non-empty q narrows
// it to names starting with q (case-sensitive).
func (s *negocioService) Listar(ctx context.Context, q string, p store.Pagination) (dto.NegocioPageResponse, error) {
	var (
		page store.Page[model.Negocio]
		err  error
	)
	if q = strings.TrimSpace(q); q != "" {
		page, err = s.repo.BuscarPorPrefijo(ctx, q, p)
	} else {
		page, err = s.repo.List(ctx, p)
	}
	if err != nil {
		return dto.NegocioPageResponse{}, err
	}
	items := page.Items
	if items == nil {
		items = []model.Negocio{}
	}
	return dto.NegocioPageResponse{Items: items, Cursor: page.Cursor}, nil
}

func (s *negocioService) Obtener(ctx context.Context, id string) (model.Negocio, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return model.Negocio{}, err
	}
	if n == nil {
		return model.Negocio{}, ErrNoEncontrado
	}
	return *n, nil
}

func (s *negocioService) Ficha(ctx context.Context, id string) (dto.FichaResponse, error) {
	n, err := s.Obtener(ctx, id)
	if err != nil {
		return dto.FichaResponse{}, err
	}
	lineas := negocio.Ficha(n)
	out := dto.FichaResponse{Negocio: n, Lineas: make([]dto.LineaResponse, len(lineas))}
	for i, l := range lineas {
		out.Lineas[i] = dto.LineaResponse{Etiqueta: l.Etiqueta, Valor: l.Valor}
	}
	return out, nil
}

func (s *negocioService) Crear(ctx context.Context, req dto.NegocioRequest, propietarioID string) (model.Negocio, error) {
	n := req.Modelo()
	if n.PropietarioID == "" {
		n.PropietarioID = propietarioID
	}
	if strings.TrimSpace(n.Nombre) == "" {
		return model.Negocio{}, negocio.ErrNombreVacio
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return model.Negocio{}, err
	}
	return n, nil
}

// Actualizar overwrites every field of an existing negocio.
func (s *negocioService) Actualizar(ctx context.Context, id string, req dto.NegocioRequest) (model.Negocio, error) {
	actual, err := s.Obtener(ctx, id)
	if err != nil {
		return model.Negocio{}, err
	}
	n := req.Modelo()
	n.ID = id
	if n.PropietarioID == "" {
		n.PropietarioID = actual.PropietarioID
	}
	if strings.TrimSpace(n.Nombre) == "" {
		return model.Negocio{}, negocio.ErrNombreVacio
	}
	if err := s.repo.Update(ctx, id, negocio.Reemplazo(n)); err != nil {
		if isNotFound(err) {
			return model.Negocio{}, ErrNoEncontrado
		}
		return model.Negocio{}, err
	}
	return n, nil
}

// EditarFormulario applies field edits in order and stores only the touched fields.
func (s *negocioService) EditarFormulario(ctx context.Context, id string, req dto.FormularioRequest) (model.Negocio, error) {
	actual, err := s.Obtener(ctx, id)
	if err != nil {
		return model.Negocio{}, err
	}
	cambios := make([]negocio.Cambio, 0, len(req.Cambios))
	for _, c := range req.Cambios {
		cambio, err := negocio.ParsearCambio(c.Campo, c.Valor)
		if err != nil {
			return model.Negocio{}, err
		}
		cambios = append(cambios, cambio)
	}

	f := negocio.NuevoFormulario(actual)
	if err := f.AplicarTodos(cambios); err != nil {
		return model.Negocio{}, err
	}
	if err := f.Validar(); err != nil {
		return model.Negocio{}, err
	}
	if err := s.repo.Update(ctx, id, f.Parche()); err != nil {
		if isNotFound(err) {
			return model.Negocio{}, ErrNoEncontrado
		}
		return model.Negocio{}, err
	}
	return f.Negocio, nil
}

// Eliminar deletes the negocio; a missing id is not an error.
func (s *negocioService) Eliminar(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *negocioService) Lugares(ctx context.Context, negocioID string) ([]model.Lugar, error) {
	return orEmpty(s.catalogo.LugaresPorNegocio(ctx, negocioID))
}

func (s *negocioService) Productos(ctx context.Context, negocioID string) ([]model.Producto, error) {
	return orEmpty(s.catalogo.ProductosPorNegocio(ctx, negocioID))
}

func (s *negocioService) Eventos(ctx context.Context, lugarID string) ([]model.Evento, error) {
	return orEmpty(s.catalogo.EventosPorLugar(ctx, lugarID))
}

func (s *negocioService) DePropietario(ctx context.Context, usuarioID string) ([]model.Negocio, error) {
	return orEmpty(s.repo.ByPropietario(ctx, usuarioID))
}

func orEmpty[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
