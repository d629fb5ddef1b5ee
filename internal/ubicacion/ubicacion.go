// Package ubicacion implements the cascading País → Estado → Ciudad
// selector: per-level browse/create/select state, top-down persistence of
// new records, the persisted "last selected ciudad" and its rehydration,
// and the human label of a ciudad.
package ubicacion

import (
	"errors"
	"sort"
	"strings"

	"github.com/juliosincable/infourbi/internal/model"
)

// Nivel is one level of the hierarchy.
type Nivel string

const (
	NivelPais   Nivel = "pais"
	NivelEstado Nivel = "estado"
	NivelCiudad Nivel = "ciudad"
)

// niveles in persistence order.
var niveles = []Nivel{NivelPais, NivelEstado, NivelCiudad}

func (n Nivel) Valid() bool {
	return n == NivelPais || n == NivelEstado || n == NivelCiudad
}

func (n Nivel) indice() int {
	for i, v := range niveles {
		if v == n {
			return i
		}
	}
	return -1
}

// Nuevo is the sentinel option id that switches a level into creation mode.
const Nuevo = "nuevo"

// Desconocido replaces a missing Estado or País in a label.
const Desconocido = "desconocido"

// Claves de preferencias.
const (
	ClaveCiudadSeleccionada = "ciudad_seleccionada_id"
	// ClaveCiudadLegacy held the ciudad name; it is read once and migrated.
	ClaveCiudadLegacy = "ciudad_seleccionada"
)

// Modo is the state of one level.
type Modo string

const (
	Explorando   Modo = "explorando"
	Creando      Modo = "creando"
	Seleccionado Modo = "seleccionado"
)

// Etapa is the state of one level. SeleccionID is set only when Seleccionado,
// NombreNuevo only when Creando.
type Etapa struct {
	Modo        Modo   `json:"modo"`
	SeleccionID string `json:"seleccion_id,omitempty"`
	NombreNuevo string `json:"nombre_nuevo,omitempty"`
}

var explorando = Etapa{Modo: Explorando}

// ErrEventoDesconocido is returned for an event outside the closed set.
var ErrEventoDesconocido = errors.New("evento de selección desconocido")

// ErrCerrado is returned by a selector after Cerrar.
var ErrCerrado = errors.New("selector cerrado")

// ErrValidacion lists the offending fields; nothing was persisted.
type ErrValidacion struct {
	Campos map[string]string
}

func (e *ErrValidacion) Error() string {
	keys := make([]string, 0, len(e.Campos))
	for k := range e.Campos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	partes := make([]string, len(keys))
	for i, k := range keys {
		partes[i] = k + ": " + e.Campos[k]
	}
	return "validación: " + strings.Join(partes, "; ")
}

func invalido(campo, msg string) *ErrValidacion {
	return &ErrValidacion{Campos: map[string]string{campo: msg}}
}

// Etiqueta renders "Ciudad (Estado, País)". A missing Estado or País is
// shown as "desconocido".
func Etiqueta(c model.Ciudad, estados []model.Estado, paises []model.Pais) string {
	nombreEstado, nombrePais := Desconocido, Desconocido
	if e := buscarEstado(estados, c.EstadoID); e != nil {
		nombreEstado = e.Nombre
		if p := buscarPais(paises, e.PaisID); p != nil {
			nombrePais = p.Nombre
		}
	}
	return c.Nombre + " (" + nombreEstado + ", " + nombrePais + ")"
}

func buscarPais(list []model.Pais, id string) *model.Pais {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func buscarEstado(list []model.Estado, id string) *model.Estado {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func buscarCiudad(list []model.Ciudad, id string) *model.Ciudad {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func estadosDe(list []model.Estado, paisID string) []model.Estado {
	out := make([]model.Estado, 0)
	for _, e := range list {
		if e.PaisID == paisID {
			out = append(out, e)
		}
	}
	return out
}

func ciudadesDe(list []model.Ciudad, estadoID string) []model.Ciudad {
	out := make([]model.Ciudad, 0)
	for _, c := range list {
		if c.EstadoID == estadoID {
			out = append(out, c)
		}
	}
	return out
}
