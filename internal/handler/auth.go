package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juliosincable/infourbi/internal/apierror"
	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/middleware"
	"github.com/juliosincable/infourbi/internal/service"
)

type AuthHandler struct {
	svc          service.AuthService
	secureCookie bool
}

// NewAuthHandler builds the auth endpoints. secureCookie marks the session
// cookie Secure (production).
func NewAuthHandler(svc service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookie: secureCookie}
}

// Login signs in with correo and password (POST /v1/auth/login). Failures
// carry an auth/* code.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	h.setCookie(c, resp.AccessToken, resp.ExpiresIn)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Registrar(c *gin.Context) {
	var req dto.RegistroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	if resp.AccessToken != "" {
		h.setCookie(c, resp.AccessToken, resp.ExpiresIn)
	}
	c.JSON(http.StatusCreated, resp)
}

// Logout revokes the caller's token and clears the cookie. Logging out
// without a session succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	s := middleware.GetSesion(c)
	if s.Token != "" {
		if err := h.svc.Logout(c.Request.Context(), s.Token); err != nil {
			responderError(c, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Sesion reports the session state; it never redirects.
func (h *AuthHandler) Sesion(c *gin.Context) {
	s := middleware.GetSesion(c)
	resp := dto.SesionResponse{Estado: string(s.Estado)}
	if s.Estado == middleware.EstadoCargando {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	if s.Identidad != nil {
		u := perfil(c, h.svc, s.Identidad)
		if u == nil {
			return
		}
		resp.Usuario = u
	}
	c.JSON(http.StatusOK, resp)
}

// Perfil returns the authenticated user (GET /v1/auth/me).
func (h *AuthHandler) Perfil(c *gin.Context) {
	s := middleware.GetSesion(c)
	if s.Identidad == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return
	}
	if u := perfil(c, h.svc, s.Identidad); u != nil {
		c.JSON(http.StatusOK, u)
	}
}

// perfil loads the stored profile, falling back to the token's claims for
// firebase users without a profile document. It writes the error response
// and returns nil on failure.
func perfil(c *gin.Context, svc service.AuthService, id *service.Identidad) *dto.UsuarioResponse {
	u, err := svc.Usuario(c.Request.Context(), id.UsuarioID)
	if errors.Is(err, service.ErrNoEncontrado) {
		return &dto.UsuarioResponse{ID: id.UsuarioID, Nombre: id.Nombre, Correo: id.Correo}
	}
	if err != nil {
		responderError(c, err)
		return nil
	}
	return u
}

func (h *AuthHandler) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieSesion, token, maxAge, "/", "", h.secureCookie, true)
}
