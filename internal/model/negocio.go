package model

// ColeccionNegocios is the store collection holding business listings.
const ColeccionNegocios = "negocios"

// Coordenadas is a geographic point.
type Coordenadas struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Negocio is a business listing. Lugar is a free-form tag list and is
// not linked to the Pais/Estado/Ciudad hierarchy.
type Negocio struct {
	ID              string      `json:"id"`
	Nombre          string      `json:"nombre"`
	PropietarioID   string      `json:"propietario_id"`
	Whatsapp        string      `json:"whatsapp"`
	Instagram       string      `json:"instagram,omitempty"`
	Direccion       string      `json:"direccion"`
	Tiktok          string      `json:"tiktok,omitempty"`
	Web             string      `json:"web,omitempty"`
	Coordenadas     Coordenadas `json:"coordenadas"`
	Foto            string      `json:"foto"`
	CodigoQr        string      `json:"codigoQr"`
	Administradores []string    `json:"administradores"`
	Logo            string      `json:"logo"`
	Categoria       string      `json:"categoria"`
	Lugar           []string    `json:"lugar"`
}
