package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPaisRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=120"`
}

type CrearEstadoRequest struct {
	Nombre string `json:"nombre"  validate:"required,min=1,max=120"`
	PaisID string `json:"pais_id" validate:"required"`
}

type CrearCiudadRequest struct {
	Nombre   string `json:"nombre"    validate:"required,min=1,max=120"`
	EstadoID string `json:"estado_id" validate:"required"`
}

type RenombrarRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=120"`
}

// PasoRequest is one level of a cascade: an existing id, or a new name.
type PasoRequest struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre" validate:"max=120"`
	Nuevo  bool   `json:"nuevo"`
}

// CascadaRequest creates every level marked nuevo, top-down, up to Hasta.
type CascadaRequest struct {
	Pais   PasoRequest `json:"pais"`
	Estado PasoRequest `json:"estado"`
	Ciudad PasoRequest `json:"ciudad"`
	Hasta  string      `json:"hasta" validate:"required,oneof=pais estado ciudad"`
}

// EventoSeleccionRequest is the wire form of one selector event.
type EventoSeleccionRequest struct {
	Tipo   string `json:"tipo"   validate:"required,oneof=seleccionar crear_nuevo escribir_nombre cancelar guardar"`
	Nivel  string `json:"nivel"  validate:"required,oneof=pais estado ciudad"`
	ID     string `json:"id"`
	Nombre string `json:"nombre" validate:"max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CascadaResponse struct {
	PaisID   string `json:"pais_id,omitempty"`
	EstadoID string `json:"estado_id,omitempty"`
	CiudadID string `json:"ciudad_id,omitempty"`
	Etiqueta string `json:"etiqueta,omitempty"`
}

type EtiquetaResponse struct {
	CiudadID string `json:"ciudad_id"`
	Etiqueta string `json:"etiqueta"`
}
