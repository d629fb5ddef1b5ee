package model

// ColeccionUsuarios is the store collection holding user profiles.
const ColeccionUsuarios = "usuarios"

// Usuario is a registered user. PasswordHash is only set for the local
// auth provider and never leaves the service layer.
type Usuario struct {
	ID           string `json:"id"`
	Nombre       string `json:"nombre"`
	Correo       string `json:"correo"`
	PasswordHash string `json:"password_hash,omitempty"`
}
