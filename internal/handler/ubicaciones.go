package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/service"
)

type UbicacionesHandler struct{ svc service.UbicacionService }

func NewUbicacionesHandler(svc service.UbicacionService) *UbicacionesHandler {
	return &UbicacionesHandler{svc: svc}
}

func (h *UbicacionesHandler) ListarPaises(c *gin.Context) {
	items, err := h.svc.Paises(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *UbicacionesHandler) CrearPais(c *gin.Context) {
	var req dto.CrearPaisRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.svc.CrearPais(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListarEstados lists every estado, or those of ?pais_id=.
func (h *UbicacionesHandler) ListarEstados(c *gin.Context) {
	items, err := h.svc.Estados(c.Request.Context(), c.Query("pais_id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *UbicacionesHandler) CrearEstado(c *gin.Context) {
	var req dto.CrearEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	e, err := h.svc.CrearEstado(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// ListarCiudades lists every ciudad, or those of ?estado_id=.
func (h *UbicacionesHandler) ListarCiudades(c *gin.Context) {
	items, err := h.svc.Ciudades(c.Request.Context(), c.Query("estado_id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *UbicacionesHandler) CrearCiudad(c *gin.Context) {
	var req dto.CrearCiudadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ciudad, err := h.svc.CrearCiudad(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ciudad)
}

// CrearEnCascada creates a ciudad with optional new país and estado in
// one submission (POST /v1/ubicaciones).
func (h *UbicacionesHandler) CrearEnCascada(c *gin.Context) {
	var req dto.CascadaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearEnCascada(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Renombrar returns the PUT handler of one level's collection.
func (h *UbicacionesHandler) Renombrar(coleccion string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RenombrarRequest
		if !bindAndValidate(c, &req) {
			return
		}
		if err := h.svc.Renombrar(c.Request.Context(), coleccion, c.Param("id"), req.Nombre); err != nil {
			responderError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Eliminar returns the DELETE handler of one level's collection. Children
// are not deleted.
func (h *UbicacionesHandler) Eliminar(coleccion string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.svc.Eliminar(c.Request.Context(), coleccion, c.Param("id")); err != nil {
			responderError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *UbicacionesHandler) Etiqueta(c *gin.Context) {
	resp, err := h.svc.Etiqueta(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
