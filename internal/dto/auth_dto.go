package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LoginRequest leaves the email format to the service so a malformed address
// is reported as auth/invalid-email.
type LoginRequest struct {
	Correo   string `json:"correo"   validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

type RegistroRequest struct {
	Nombre   string `json:"nombre"   validate:"required,min=2,max=100"`
	Correo   string `json:"correo"   validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	Usuario     UsuarioResponse `json:"usuario"`
}

// SesionResponse describes the caller's session state.
type SesionResponse struct {
	Estado  string           `json:"estado"`
	Usuario *UsuarioResponse `json:"usuario,omitempty"`
}
