package ubicacion

import "fmt"

// Evento is the closed set of user actions a Selector accepts. The unexported
// method seals the union; Selector.Aplicar switches over every variant.
type Evento interface {
	evento()
}

// SeleccionarPais picks an existing país. ID Nuevo is the same as CrearNuevo;
// an empty ID clears the selection.
type SeleccionarPais struct{ ID string }

// SeleccionarEstado picks an estado of the selected país.
type SeleccionarEstado struct{ ID string }

// SeleccionarCiudad picks a ciudad of the selected estado and remembers it.
type SeleccionarCiudad struct{ ID string }

// CrearNuevo switches a level into creation mode.
type CrearNuevo struct{ Nivel Nivel }

// EscribirNombre sets the name typed for a level being created.
type EscribirNombre struct {
	Nivel  Nivel
	Nombre string
}

// Cancelar abandons creation at a level and below.
type Cancelar struct{ Nivel Nivel }

// Guardar persists every level being created, top-down, up to Nivel.
type Guardar struct{ Nivel Nivel }

func (SeleccionarPais) evento()   {}
func (SeleccionarEstado) evento() {}
func (SeleccionarCiudad) evento() {}
func (CrearNuevo) evento()        {}
func (EscribirNombre) evento()    {}
func (Cancelar) evento()          {}
func (Guardar) evento()           {}

// Tipos de evento aceptados por ParsearEvento.
const (
	TipoSeleccionar    = "seleccionar"
	TipoCrearNuevo     = "crear_nuevo"
	TipoEscribirNombre = "escribir_nombre"
	TipoCancelar       = "cancelar"
	TipoGuardar        = "guardar"
)

// ParsearEvento builds an Evento from its wire form.
func ParsearEvento(tipo string, nivel Nivel, id, nombre string) (Evento, error) {
	if !nivel.Valid() {
		return nil, fmt.Errorf("%w: nivel %q", ErrEventoDesconocido, nivel)
	}
	switch tipo {
	case TipoSeleccionar:
		switch nivel {
		case NivelPais:
			return SeleccionarPais{ID: id}, nil
		case NivelEstado:
			return SeleccionarEstado{ID: id}, nil
		default:
			return SeleccionarCiudad{ID: id}, nil
		}
	case TipoCrearNuevo:
		return CrearNuevo{Nivel: nivel}, nil
	case TipoEscribirNombre:
		return EscribirNombre{Nivel: nivel, Nombre: nombre}, nil
	case TipoCancelar:
		return Cancelar{Nivel: nivel}, nil
	case TipoGuardar:
		return Guardar{Nivel: nivel}, nil
	}
	return nil, fmt.Errorf("%w: tipo %q", ErrEventoDesconocido, tipo)
}
