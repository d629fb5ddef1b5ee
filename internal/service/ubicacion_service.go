package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/ubicacion"
)

// UbicacionService manages the País → Estado → Ciudad hierarchy.
type UbicacionService interface {
	Paises(ctx context.Context) ([]model.Pais, error)
	Estados(ctx context.Context, paisID string) ([]model.Estado, error)
	Ciudades(ctx context.Context, estadoID string) ([]model.Ciudad, error)

	CrearPais(ctx context.Context, req dto.CrearPaisRequest) (model.Pais, error)
	CrearEstado(ctx context.Context, req dto.CrearEstadoRequest) (model.Estado, error)
	CrearCiudad(ctx context.Context, req dto.CrearCiudadRequest) (model.Ciudad, error)
	CrearEnCascada(ctx context.Context, req dto.CascadaRequest) (dto.CascadaResponse, error)

	Renombrar(ctx context.Context, coleccion, id, nombre string) error
	Eliminar(ctx context.Context, coleccion, id string) error
	Etiqueta(ctx context.Context, ciudadID string) (dto.EtiquetaResponse, error)
}

type ubicacionService struct {
	repo repository.UbicacionRepository
}

func NewUbicacionService(repo repository.UbicacionRepository) UbicacionService {
	return &ubicacionService{repo: repo}
}

func (s *ubicacionService) Paises(ctx context.Context) ([]model.Pais, error) {
	return s.repo.Paises(ctx)
}

func (s *ubicacionService) Estados(ctx context.Context, paisID string) ([]model.Estado, error) {
	return s.repo.Estados(ctx, paisID)
}

func (s *ubicacionService) Ciudades(ctx context.Context, estadoID string) ([]model.Ciudad, error) {
	return s.repo.Ciudades(ctx, estadoID)
}

func (s *ubicacionService) CrearPais(ctx context.Context, req dto.CrearPaisRequest) (model.Pais, error) {
	nombre, err := nombreRequerido(req.Nombre)
	if err != nil {
		return model.Pais{}, err
	}
	p := model.Pais{Nombre: nombre}
	err = s.repo.CrearPais(ctx, &p)
	return p, err
}

func (s *ubicacionService) CrearEstado(ctx context.Context, req dto.CrearEstadoRequest) (model.Estado, error) {
	nombre, err := nombreRequerido(req.Nombre)
	if err != nil {
		return model.Estado{}, err
	}
	pais, err := s.repo.Pais(ctx, req.PaisID)
	if err != nil {
		return model.Estado{}, err
	}
	if pais == nil {
		return model.Estado{}, fmt.Errorf("%w: país %s", ErrPadreNoExiste, req.PaisID)
	}
	e := model.Estado{Nombre: nombre, PaisID: pais.ID}
	err = s.repo.CrearEstado(ctx, &e)
	return e, err
}

func (s *ubicacionService) CrearCiudad(ctx context.Context, req dto.CrearCiudadRequest) (model.Ciudad, error) {
	nombre, err := nombreRequerido(req.Nombre)
	if err != nil {
		return model.Ciudad{}, err
	}
	estado, err := s.repo.Estado(ctx, req.EstadoID)
	if err != nil {
		return model.Ciudad{}, err
	}
	if estado == nil {
		return model.Ciudad{}, fmt.Errorf("%w: estado %s", ErrPadreNoExiste, req.EstadoID)
	}
	c := model.Ciudad{Nombre: nombre, EstadoID: estado.ID}
	err = s.repo.CrearCiudad(ctx, &c)
	return c, err
}

// CrearEnCascada persists every level marked nuevo, top-down. Existing ids
// are checked before anything is written.
func (s *ubicacionService) CrearEnCascada(ctx context.Context, req dto.CascadaRequest) (dto.CascadaResponse, error) {
	plan := ubicacion.Plan{
		Pais:   paso(req.Pais),
		Estado: paso(req.Estado),
		Ciudad: paso(req.Ciudad),
		Hasta:  ubicacion.Nivel(req.Hasta),
	}
	if err := plan.Validar(); err != nil {
		return dto.CascadaResponse{}, err
	}
	if err := s.verificarExistentes(ctx, plan); err != nil {
		return dto.CascadaResponse{}, err
	}

	res, err := ubicacion.Persistir(ctx, s.repo, plan)
	out := dto.CascadaResponse{
		PaisID:   res.ID(ubicacion.NivelPais),
		EstadoID: res.ID(ubicacion.NivelEstado),
		CiudadID: res.ID(ubicacion.NivelCiudad),
	}
	if err != nil {
		return out, err
	}
	if res.Ciudad != nil {
		if et, err := s.Etiqueta(ctx, res.Ciudad.ID); err == nil {
			out.Etiqueta = et.Etiqueta
		}
	}
	return out, nil
}

func (s *ubicacionService) verificarExistentes(ctx context.Context, plan ubicacion.Plan) error {
	hasta := plan.Hasta
	if !plan.Pais.Nuevo {
		p, err := s.repo.Pais(ctx, plan.Pais.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: país %s", ErrPadreNoExiste, plan.Pais.ID)
		}
	}
	if hasta == ubicacion.NivelPais || plan.Estado.Nuevo {
		return nil
	}
	// an existing estado cannot hang from a país created in this same request
	if plan.Pais.Nuevo {
		return fmt.Errorf("%w: estado %s", ErrPadreNoExiste, plan.Estado.ID)
	}
	e, err := s.repo.Estado(ctx, plan.Estado.ID)
	if err != nil {
		return err
	}
	if e == nil || e.PaisID != plan.Pais.ID {
		return fmt.Errorf("%w: estado %s", ErrPadreNoExiste, plan.Estado.ID)
	}
	return nil
}

// nombreRequerido trims a level name; blank names are rejected before any write.
func nombreRequerido(nombre string) (string, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return "", &ubicacion.ErrValidacion{Campos: map[string]string{"nombre": "El nombre no puede estar vacío."}}
	}
	return nombre, nil
}

func paso(p dto.PasoRequest) ubicacion.Paso {
	return ubicacion.Paso{ID: p.ID, Nombre: p.Nombre, Nuevo: p.Nuevo}
}

func (s *ubicacionService) Renombrar(ctx context.Context, coleccion, id, nombre string) error {
	if err := validarColeccion(coleccion); err != nil {
		return err
	}
	nombre, err := nombreRequerido(nombre)
	if err != nil {
		return err
	}
	err = s.repo.Actualizar(ctx, coleccion, id, map[string]any{"nombre": nombre})
	if isNotFound(err) {
		return ErrNoEncontrado
	}
	return err
}

// Eliminar is a hard delete without cascade; children keep their parent id.
func (s *ubicacionService) Eliminar(ctx context.Context, coleccion, id string) error {
	if err := validarColeccion(coleccion); err != nil {
		return err
	}
	return s.repo.Eliminar(ctx, coleccion, id)
}

func (s *ubicacionService) Etiqueta(ctx context.Context, ciudadID string) (dto.EtiquetaResponse, error) {
	c, err := s.repo.Ciudad(ctx, ciudadID)
	if err != nil {
		return dto.EtiquetaResponse{}, err
	}
	if c == nil {
		return dto.EtiquetaResponse{}, ErrNoEncontrado
	}
	var (
		estados []model.Estado
		paises  []model.Pais
	)
	if e, err := s.repo.Estado(ctx, c.EstadoID); err != nil {
		return dto.EtiquetaResponse{}, err
	} else if e != nil {
		estados = append(estados, *e)
		if p, err := s.repo.Pais(ctx, e.PaisID); err != nil {
			return dto.EtiquetaResponse{}, err
		} else if p != nil {
			paises = append(paises, *p)
		}
	}
	return dto.EtiquetaResponse{CiudadID: c.ID, Etiqueta: ubicacion.Etiqueta(*c, estados, paises)}, nil
}

func validarColeccion(coleccion string) error {
	switch coleccion {
	case model.ColeccionPaises, model.ColeccionEstados, model.ColeccionCiudades:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrColeccion, coleccion)
}
