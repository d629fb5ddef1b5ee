package negocio

import (
	"strconv"

	"github.com/juliosincable/infourbi/internal/model"
)

// SinDato stands in for an empty field on the sheet.
const SinDato = "N/A"

// Linea is one labelled row of the read-only sheet.
type Linea struct {
	Etiqueta string `json:"etiqueta"`
	Valor    string `json:"valor"`
}

// Ficha renders the read-only dump of a negocio in display order.
func Ficha(n model.Negocio) []Linea {
	return []Linea{
		{"Nombre", oSinDato(n.Nombre)},
		{"WhatsApp", oSinDato(n.Whatsapp)},
		{"Dirección", oSinDato(n.Direccion)},
		{"Categoría", oSinDato(n.Categoria)},
		{"ID", n.ID},
		{"Lugar", oSinDato(UnirLista(n.Lugar))},
		{"Latitud", coordenada(n.Coordenadas.Lat)},
		{"Longitud", coordenada(n.Coordenadas.Lng)},
		{"Instagram", oSinDato(n.Instagram)},
		{"TikTok", oSinDato(n.Tiktok)},
		{"Web", oSinDato(n.Web)},
		{"Administradores", oSinDato(UnirLista(n.Administradores))},
		{"Foto", oSinDato(n.Foto)},
		{"Logo", oSinDato(n.Logo)},
		{"Código QR", oSinDato(n.CodigoQr)},
	}
}

func oSinDato(s string) string {
	if s == "" {
		return SinDato
	}
	return s
}

// coordenada treats 0 as unset, the value an unparsable entry stores.
func coordenada(v float64) string {
	if v == 0 {
		return SinDato
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
