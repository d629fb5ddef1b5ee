package model

// Colecciones del store para la jerarquia de ubicaciones.
const (
	ColeccionPaises   = "paises"
	ColeccionEstados  = "estados"
	ColeccionCiudades = "ciudades"
)

// Pais is the root of the location hierarchy.
type Pais struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// Estado belongs to a Pais through PaisID. The store does not enforce the reference.
type Estado struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	PaisID string `json:"pais_id"`
}

// Ciudad belongs to an Estado through EstadoID.
type Ciudad struct {
	ID       string `json:"id"`
	Nombre   string `json:"nombre"`
	EstadoID string `json:"estado_id"`
}
