package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/apierror"
	"github.com/juliosincable/infourbi/internal/middleware"
	"github.com/juliosincable/infourbi/internal/negocio"
	"github.com/juliosincable/infourbi/internal/service"
	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/ubicacion"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// responderError maps a service error to its HTTP answer. Causes that are
// not the caller's fault are logged and answered with a generic message.
func responderError(c *gin.Context, err error) {
	var (
		authErr *service.AuthError
		valErr  *ubicacion.ErrValidacion
		opErr   *store.OpError
	)
	switch {
	case errors.As(err, &authErr):
		if authErr.Err != nil {
			log.Warn().Err(authErr.Err).Str("request_id", c.GetString(middleware.RequestIDKey)).Str("code", authErr.Codigo).Msg("auth error")
		}
		c.JSON(authErr.Status(), apierror.WithCode(authErr.Codigo, authErr.Mensaje()))
	case errors.As(err, &valErr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(valErr.Campos))
	case errors.Is(err, negocio.ErrNombreVacio):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"nombre": negocio.MensajeNombreVacio}))
	case errors.Is(err, negocio.ErrCambioDesconocido), errors.Is(err, ubicacion.ErrEventoDesconocido):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPadreNoExiste):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
	case errors.Is(err, service.ErrColeccion):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, store.ErrCursor):
		c.JSON(http.StatusBadRequest, apierror.New("Cursor invalido"))
	case errors.Is(err, ubicacion.ErrCerrado):
		c.JSON(http.StatusConflict, apierror.New("El selector se cerró, vuelve a abrirlo"))
	case errors.As(err, &opErr):
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Str("path", c.FullPath()).Msg("store error")
		c.JSON(http.StatusInternalServerError, apierror.New(opErr.Mensaje()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

// parsePagination reads ?limit=&cursor=&orden=.
func parsePagination(c *gin.Context) (store.Pagination, bool) {
	p := store.Pagination{Cursor: c.Query("cursor")}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, apierror.New("limit debe estar entre 1 y 100"))
			return p, false
		}
		p.PageSize = n
	}
	if c.Query("orden") == "desc" {
		p.Direccion = store.Desc
	}
	return p, true
}

// usuarioID returns the authenticated caller's id.
func usuarioID(c *gin.Context) string {
	if s := middleware.GetSesion(c); s.Identidad != nil {
		return s.Identidad.UsuarioID
	}
	return ""
}
