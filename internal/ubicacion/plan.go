package ubicacion

import (
	"context"
	"fmt"
	"strings"

	"github.com/juliosincable/infourbi/internal/model"
)

// Creador persists new hierarchy records and sets their ids.
type Creador interface {
	CrearPais(ctx context.Context, p *model.Pais) error
	CrearEstado(ctx context.Context, e *model.Estado) error
	CrearCiudad(ctx context.Context, c *model.Ciudad) error
}

// Paso is one level of a Plan: an existing ID, or a record to create when Nuevo.
type Paso struct {
	ID     string
	Nombre string
	Nuevo  bool
}

// Plan describes one submission: the levels from País down to Hasta.
type Plan struct {
	Pais   Paso
	Estado Paso
	Ciudad Paso
	Hasta  Nivel
}

// Resultado holds the record resolved at each planned level. Levels taken
// from an existing id carry only the id.
type Resultado struct {
	Pais   *model.Pais
	Estado *model.Estado
	Ciudad *model.Ciudad
}

// ID returns the resolved id at a level, or "".
func (r Resultado) ID(n Nivel) string {
	switch n {
	case NivelPais:
		if r.Pais != nil {
			return r.Pais.ID
		}
	case NivelEstado:
		if r.Estado != nil {
			return r.Estado.ID
		}
	case NivelCiudad:
		if r.Ciudad != nil {
			return r.Ciudad.ID
		}
	}
	return ""
}

var mensajeNombre = map[Nivel]string{
	NivelPais:   "El nombre del país no puede estar vacío.",
	NivelEstado: "El nombre del estado no puede estar vacío.",
	NivelCiudad: "El nombre de la ciudad no puede estar vacío.",
}

var mensajePadre = map[Nivel]string{
	NivelPais:   "Selecciona un país o crea uno nuevo.",
	NivelEstado: "Selecciona un estado o crea uno nuevo.",
}

func (p Plan) paso(n Nivel) Paso {
	switch n {
	case NivelPais:
		return p.Pais
	case NivelEstado:
		return p.Estado
	default:
		return p.Ciudad
	}
}

// Validar checks every planned level without touching the store.
func (p Plan) Validar() error {
	hasta := p.Hasta.indice()
	if hasta < 0 {
		return invalido("nivel", "Nivel desconocido.")
	}
	campos := map[string]string{}
	for _, n := range niveles[:hasta+1] {
		paso := p.paso(n)
		switch {
		case paso.Nuevo && strings.TrimSpace(paso.Nombre) == "":
			campos[string(n)] = mensajeNombre[n]
		case !paso.Nuevo && paso.ID == "":
			if n == p.Hasta {
				campos[string(n)] = mensajeNombre[n]
			} else {
				campos[string(n)] = mensajePadre[n]
			}
		}
	}
	if len(campos) > 0 {
		return &ErrValidacion{Campos: campos}
	}
	return nil
}

// Persistir validates the plan and creates the new records top-down, each
// under the id resolved just above it. On a store failure the levels already
// created are returned along with the error.
func Persistir(ctx context.Context, c Creador, p Plan) (Resultado, error) {
	var res Resultado
	if err := p.Validar(); err != nil {
		return res, err
	}
	hasta := p.Hasta.indice()

	if p.Pais.Nuevo {
		pais := &model.Pais{Nombre: strings.TrimSpace(p.Pais.Nombre)}
		if err := c.CrearPais(ctx, pais); err != nil {
			return res, fmt.Errorf("crear país: %w", err)
		}
		res.Pais = pais
	} else {
		res.Pais = &model.Pais{ID: p.Pais.ID}
	}
	if hasta < NivelEstado.indice() {
		return res, nil
	}

	if p.Estado.Nuevo {
		estado := &model.Estado{Nombre: strings.TrimSpace(p.Estado.Nombre), PaisID: res.Pais.ID}
		if err := c.CrearEstado(ctx, estado); err != nil {
			return res, fmt.Errorf("crear estado: %w", err)
		}
		res.Estado = estado
	} else {
		res.Estado = &model.Estado{ID: p.Estado.ID, PaisID: res.Pais.ID}
	}
	if hasta < NivelCiudad.indice() {
		return res, nil
	}

	if p.Ciudad.Nuevo {
		ciudad := &model.Ciudad{Nombre: strings.TrimSpace(p.Ciudad.Nombre), EstadoID: res.Estado.ID}
		if err := c.CrearCiudad(ctx, ciudad); err != nil {
			return res, fmt.Errorf("crear ciudad: %w", err)
		}
		res.Ciudad = ciudad
	} else {
		res.Ciudad = &model.Ciudad{ID: p.Ciudad.ID, EstadoID: res.Estado.ID}
	}
	return res, nil
}
