package model

import "time"

// Colecciones definidas en el modelo de datos sin pantallas propias.
const (
	ColeccionLugares   = "lugares"
	ColeccionEventos   = "eventos"
	ColeccionProductos = "productos"
)

// Lugar is a venue attached to a Negocio.
type Lugar struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	NegocioID string `json:"negocio_id"`
}

// Evento happens at a Lugar on Fecha.
type Evento struct {
	ID      string    `json:"id"`
	Nombre  string    `json:"nombre"`
	LugarID string    `json:"lugar_id"`
	Fecha   time.Time `json:"fecha"`
}

// Producto is sold by a Negocio.
type Producto struct {
	ID        string  `json:"id"`
	Nombre    string  `json:"nombre"`
	NegocioID string  `json:"negocio_id"`
	Precio    float64 `json:"precio"`
}
