package negocio

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/juliosincable/infourbi/internal/model"
)

// MensajeNombreVacio is returned when a negocio is saved without a name.
const MensajeNombreVacio = "El nombre del negocio no puede estar vacío."

var (
	ErrNombreVacio       = errors.New(MensajeNombreVacio)
	ErrCambioDesconocido = errors.New("cambio de formulario desconocido")
)

// Cambio is the closed set of edits the negocio form accepts.
type Cambio interface {
	cambio()
}

type (
	CambioNombre      struct{ Valor string }
	CambioPropietario struct{ Valor string }
	CambioWhatsapp    struct{ Valor string }
	CambioInstagram   struct{ Valor string }
	CambioDireccion   struct{ Valor string }
	CambioTiktok      struct{ Valor string }
	CambioWeb         struct{ Valor string }
	CambioFoto        struct{ Valor string }
	CambioCodigoQr    struct{ Valor string }
	CambioLogo        struct{ Valor string }
	CambioCategoria   struct{ Valor string }
)

// Eje of a coordinate.
type Eje string

const (
	EjeLat Eje = "lat"
	EjeLng Eje = "lng"
)

// CambioCoordenada carries the raw text typed for one axis. Text that is not
// a number stores 0.
type CambioCoordenada struct {
	Eje   Eje
	Texto string
}

// CampoLista names a comma-joined list field.
type CampoLista string

const (
	CampoAdministradores CampoLista = "administradores"
	CampoLugar           CampoLista = "lugar"
)

// CambioLista carries the comma-joined text of a list field.
type CambioLista struct {
	Campo CampoLista
	Texto string
}

func (CambioNombre) cambio()      {}
func (CambioPropietario) cambio() {}
func (CambioWhatsapp) cambio()    {}
func (CambioInstagram) cambio()   {}
func (CambioDireccion) cambio()   {}
func (CambioTiktok) cambio()      {}
func (CambioWeb) cambio()         {}
func (CambioFoto) cambio()        {}
func (CambioCodigoQr) cambio()    {}
func (CambioLogo) cambio()        {}
func (CambioCategoria) cambio()   {}
func (CambioCoordenada) cambio()  {}
func (CambioLista) cambio()       {}

// ParsearCambio builds a Cambio from its wire form: the json field name
// (with "coordenadas.lat" / "coordenadas.lng" for the axes) and the text.
func ParsearCambio(campo, valor string) (Cambio, error) {
	switch campo {
	case "nombre":
		return CambioNombre{Valor: valor}, nil
	case "propietario_id":
		return CambioPropietario{Valor: valor}, nil
	case "whatsapp":
		return CambioWhatsapp{Valor: valor}, nil
	case "instagram":
		return CambioInstagram{Valor: valor}, nil
	case "direccion":
		return CambioDireccion{Valor: valor}, nil
	case "tiktok":
		return CambioTiktok{Valor: valor}, nil
	case "web":
		return CambioWeb{Valor: valor}, nil
	case "foto":
		return CambioFoto{Valor: valor}, nil
	case "codigoQr":
		return CambioCodigoQr{Valor: valor}, nil
	case "logo":
		return CambioLogo{Valor: valor}, nil
	case "categoria":
		return CambioCategoria{Valor: valor}, nil
	case "coordenadas.lat":
		return CambioCoordenada{Eje: EjeLat, Texto: valor}, nil
	case "coordenadas.lng":
		return CambioCoordenada{Eje: EjeLng, Texto: valor}, nil
	case string(CampoAdministradores), string(CampoLugar):
		return CambioLista{Campo: CampoLista(campo), Texto: valor}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCambioDesconocido, campo)
}

// Formulario accumulates edits over a negocio and remembers which stored
// fields they touched.
type Formulario struct {
	Negocio model.Negocio
	tocados map[string]bool
}

// NuevoFormulario starts a form over n (the zero value for a new negocio).
func NuevoFormulario(n model.Negocio) *Formulario {
	if n.Administradores == nil {
		n.Administradores = []string{}
	}
	if n.Lugar == nil {
		n.Lugar = []string{}
	}
	return &Formulario{Negocio: n, tocados: map[string]bool{}}
}

// Aplicar applies one edit.
func (f *Formulario) Aplicar(c Cambio) error {
	n := &f.Negocio
	switch e := c.(type) {
	case CambioNombre:
		n.Nombre = e.Valor
		f.tocar("nombre")
	case CambioPropietario:
		n.PropietarioID = e.Valor
		f.tocar("propietario_id")
	case CambioWhatsapp:
		n.Whatsapp = e.Valor
		f.tocar("whatsapp")
	case CambioInstagram:
		n.Instagram = e.Valor
		f.tocar("instagram")
	case CambioDireccion:
		n.Direccion = e.Valor
		f.tocar("direccion")
	case CambioTiktok:
		n.Tiktok = e.Valor
		f.tocar("tiktok")
	case CambioWeb:
		n.Web = e.Valor
		f.tocar("web")
	case CambioFoto:
		n.Foto = e.Valor
		f.tocar("foto")
	case CambioCodigoQr:
		n.CodigoQr = e.Valor
		f.tocar("codigoQr")
	case CambioLogo:
		n.Logo = e.Valor
		f.tocar("logo")
	case CambioCategoria:
		n.Categoria = e.Valor
		f.tocar("categoria")
	case CambioCoordenada:
		v := parsearCoordenada(e.Texto)
		switch e.Eje {
		case EjeLat:
			n.Coordenadas.Lat = v
		case EjeLng:
			n.Coordenadas.Lng = v
		default:
			return fmt.Errorf("%w: eje %q", ErrCambioDesconocido, e.Eje)
		}
		f.tocar("coordenadas")
	case CambioLista:
		switch e.Campo {
		case CampoAdministradores:
			n.Administradores = ParsearLista(e.Texto)
		case CampoLugar:
			n.Lugar = ParsearLista(e.Texto)
		default:
			return fmt.Errorf("%w: lista %q", ErrCambioDesconocido, e.Campo)
		}
		f.tocar(string(e.Campo))
	default:
		return ErrCambioDesconocido
	}
	return nil
}

// AplicarTodos applies edits in order and stops at the first error.
func (f *Formulario) AplicarTodos(cambios []Cambio) error {
	for i, c := range cambios {
		if err := f.Aplicar(c); err != nil {
			return fmt.Errorf("cambio %d: %w", i, err)
		}
	}
	return nil
}

func (f *Formulario) tocar(campo string) { f.tocados[campo] = true }

// Tocado reports whether an edit touched the stored field.
func (f *Formulario) Tocado(campo string) bool { return f.tocados[campo] }

// Validar checks the form can be saved.
func (f *Formulario) Validar() error {
	if strings.TrimSpace(f.Negocio.Nombre) == "" {
		return ErrNombreVacio
	}
	return nil
}

// Parche returns the partial update holding only the touched fields, keyed
// by their stored names.
func (f *Formulario) Parche() map[string]any {
	n := f.Negocio
	todos := map[string]any{
		"nombre":          n.Nombre,
		"propietario_id":  n.PropietarioID,
		"whatsapp":        n.Whatsapp,
		"instagram":       n.Instagram,
		"direccion":       n.Direccion,
		"tiktok":          n.Tiktok,
		"web":             n.Web,
		"foto":            n.Foto,
		"codigoQr":        n.CodigoQr,
		"logo":            n.Logo,
		"categoria":       n.Categoria,
		"coordenadas":     map[string]any{"lat": n.Coordenadas.Lat, "lng": n.Coordenadas.Lng},
		"administradores": n.Administradores,
		"lugar":           n.Lugar,
	}
	out := make(map[string]any, len(f.tocados))
	for k := range f.tocados {
		out[k] = todos[k]
	}
	return out
}

// Reemplazo is the patch that overwrites every stored field of n, including
// the optional ones left empty.
func Reemplazo(n model.Negocio) map[string]any {
	f := NuevoFormulario(n)
	for _, campo := range camposGuardados {
		f.tocar(campo)
	}
	return f.Parche()
}

var camposGuardados = []string{
	"nombre", "propietario_id", "whatsapp", "instagram", "direccion", "tiktok", "web",
	"foto", "codigoQr", "logo", "categoria", "coordenadas", "administradores", "lugar",
}

// Texto returns the form text of a list field.
func (f *Formulario) Texto(c CampoLista) string {
	switch c {
	case CampoAdministradores:
		return UnirLista(f.Negocio.Administradores)
	case CampoLugar:
		return UnirLista(f.Negocio.Lugar)
	}
	return ""
}

func parsearCoordenada(texto string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(texto), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
