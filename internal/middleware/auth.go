package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/apierror"
	"github.com/juliosincable/infourbi/internal/service"
)

const (
	SesionKey = "sesion"
	// CookieSesion carries the access token for browser navigation.
	CookieSesion = "infourbi_token"
)

// Estado is the auth state of the current request.
type Estado string

const (
	EstadoCargando      Estado = "cargando"
	EstadoAutenticado   Estado = "autenticado"
	EstadoNoAutenticado Estado = "no_autenticado"
)

// Sesion is the resolved session of one request. Identidad is set only
// when Estado is autenticado.
type Sesion struct {
	Estado    Estado
	Identidad *service.Identidad
	Token     string
}

// Verificador resolves a token; service.AuthService satisfies it.
type Verificador interface {
	Verificar(ctx context.Context, token string) (*service.Identidad, error)
}

// ResolverSesion runs on every request and stores a *Sesion in the context.
// It never aborts; the guards decide what each state means for a route.
func ResolverSesion(v Verificador) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenDe(c)
		s := &Sesion{Estado: EstadoNoAutenticado, Token: token}
		if token != "" {
			id, err := v.Verificar(c.Request.Context(), token)
			switch {
			case err == nil:
				s.Estado = EstadoAutenticado
				s.Identidad = id
			case errors.Is(err, service.ErrVerificacionNoDisponible):
				s.Estado = EstadoCargando
				log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("sesion sin resolver")
			}
		}
		c.Set(SesionKey, s)
		c.Next()
	}
}

func tokenDe(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(CookieSesion); err == nil {
		return ck
	}
	return ""
}

// GetSesion returns the session stored by ResolverSesion, or an
// unauthenticated one when the resolver did not run.
func GetSesion(c *gin.Context) *Sesion {
	if v, ok := c.Get(SesionKey); ok {
		if s, ok := v.(*Sesion); ok {
			return s
		}
	}
	return &Sesion{Estado: EstadoNoAutenticado}
}

// Privada lets authenticated sessions through and sends everyone else to
// the login page, remembering where they were going.
func Privada() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch GetSesion(c).Estado {
		case EstadoAutenticado:
			c.Next()
		case EstadoCargando:
			cargando(c)
		default:
			c.Redirect(http.StatusFound, "/login?from="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
		}
	}
}

// Anonima is the guard of the login page: signed-in users go home.
func Anonima() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch GetSesion(c).Estado {
		case EstadoNoAutenticado:
			c.Next()
		case EstadoCargando:
			cargando(c)
		default:
			c.Redirect(http.StatusFound, "/home")
			c.Abort()
		}
	}
}

// RequiereSesion is the JSON flavour of Privada used by the /v1 API.
func RequiereSesion() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch GetSesion(c).Estado {
		case EstadoAutenticado:
			c.Next()
		case EstadoCargando:
			cargando(c)
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		}
	}
}

func cargando(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.WithCode(service.CodigoFalloDeRed, "Verificando sesión, intenta de nuevo en un momento."))
}
