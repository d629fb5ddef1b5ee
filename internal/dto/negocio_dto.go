package dto

import "github.com/juliosincable/infourbi/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CoordenadasRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// NegocioRequest is the full form of a negocio. PropietarioID defaults to the
// caller when empty.
type NegocioRequest struct {
	Nombre          string             `json:"nombre"          validate:"required,min=1,max=150"`
	PropietarioID   string             `json:"propietario_id"`
	Whatsapp        string             `json:"whatsapp"        validate:"max=30"`
	Instagram       string             `json:"instagram"       validate:"max=100"`
	Direccion       string             `json:"direccion"       validate:"max=300"`
	Tiktok          string             `json:"tiktok"          validate:"max=100"`
	Web             string             `json:"web"             validate:"omitempty,url"`
	Coordenadas     CoordenadasRequest `json:"coordenadas"`
	Foto            string             `json:"foto"`
	CodigoQr        string             `json:"codigoQr"`
	Administradores []string           `json:"administradores" validate:"dive,required"`
	Logo            string             `json:"logo"`
	Categoria       string             `json:"categoria"       validate:"max=80"`
	Lugar           []string           `json:"lugar"           validate:"dive,required"`
}

// Modelo maps the request onto a negocio record without an id.
func (r NegocioRequest) Modelo() model.Negocio {
	n := model.Negocio{
		Nombre:          r.Nombre,
		PropietarioID:   r.PropietarioID,
		Whatsapp:        r.Whatsapp,
		Instagram:       r.Instagram,
		Direccion:       r.Direccion,
		Tiktok:          r.Tiktok,
		Web:             r.Web,
		Coordenadas:     model.Coordenadas{Lat: r.Coordenadas.Lat, Lng: r.Coordenadas.Lng},
		Foto:            r.Foto,
		CodigoQr:        r.CodigoQr,
		Administradores: r.Administradores,
		Logo:            r.Logo,
		Categoria:       r.Categoria,
		Lugar:           r.Lugar,
	}
	if n.Administradores == nil {
		n.Administradores = []string{}
	}
	if n.Lugar == nil {
		n.Lugar = []string{}
	}
	return n
}

// CambioRequest is one form edit: the stored field name and the typed text.
// Coordinates use "coordenadas.lat" / "coordenadas.lng"; list fields take the
// comma-joined text.
type CambioRequest struct {
	Campo string `json:"campo" validate:"required"`
	Valor string `json:"valor"`
}

type FormularioRequest struct {
	Cambios []CambioRequest `json:"cambios" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NegocioPageResponse struct {
	Items  []model.Negocio `json:"items"`
	Cursor string          `json:"cursor,omitempty"`
}

type LineaResponse struct {
	Etiqueta string `json:"etiqueta"`
	Valor    string `json:"valor"`
}

type FichaResponse struct {
	Negocio model.Negocio   `json:"negocio"`
	Lineas  []LineaResponse `json:"lineas"`
}
