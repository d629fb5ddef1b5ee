package service

import (
	"errors"
	"net/http"
)

// Códigos de error de autenticación, con los mismos valores que Firebase Auth.
const (
	CodigoUsuarioNoEncontrado  = "auth/user-not-found"
	CodigoPasswordIncorrecto   = "auth/wrong-password"
	CodigoEmailInvalido        = "auth/invalid-email"
	CodigoDemasiadosIntentos   = "auth/too-many-requests"
	CodigoFalloDeRed           = "auth/network-request-failed"
	CodigoEmailEnUso           = "auth/email-already-in-use"
	CodigoOperacionNoPermitida = "auth/operation-not-allowed"
)

var mensajes = map[string]string{
	CodigoUsuarioNoEncontrado:  "Credenciales incorrectas. Verifica tu email y contraseña.",
	CodigoPasswordIncorrecto:   "Credenciales incorrectas. Verifica tu email y contraseña.",
	CodigoEmailInvalido:        "El formato del email es inválido.",
	CodigoDemasiadosIntentos:   "Demasiados intentos fallidos. Inténtalo más tarde.",
	CodigoFalloDeRed:           "Error de red. Verifica tu conexión a internet.",
	CodigoEmailEnUso:           "Ya existe una cuenta registrada con ese email.",
	CodigoOperacionNoPermitida: "El inicio de sesión con contraseña se realiza desde la aplicación.",
}

// MensajeGenerico is shown for codes without a translation.
const MensajeGenerico = "Error al iniciar sesión. Por favor, revisa tus credenciales."

// MensajeError translates an auth error code into the text shown to the user.
func MensajeError(codigo string) string {
	if m, ok := mensajes[codigo]; ok {
		return m
	}
	return MensajeGenerico
}

// AuthError is a failed auth operation identified by its provider code.
type AuthError struct {
	Codigo string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Codigo + ": " + e.Err.Error()
	}
	return e.Codigo
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Mensaje() string { return MensajeError(e.Codigo) }

// Status is the HTTP status the code is answered with.
func (e *AuthError) Status() int {
	switch e.Codigo {
	case CodigoUsuarioNoEncontrado, CodigoPasswordIncorrecto:
		return http.StatusUnauthorized
	case CodigoEmailInvalido:
		return http.StatusUnprocessableEntity
	case CodigoDemasiadosIntentos:
		return http.StatusTooManyRequests
	case CodigoFalloDeRed:
		return http.StatusServiceUnavailable
	case CodigoEmailEnUso:
		return http.StatusConflict
	case CodigoOperacionNoPermitida:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

func authErr(codigo string, err error) *AuthError {
	return &AuthError{Codigo: codigo, Err: err}
}

// CodigoDe returns the auth code carried by err, or "".
func CodigoDe(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Codigo
	}
	return ""
}
