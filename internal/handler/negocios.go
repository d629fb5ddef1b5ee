package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/juliosincable/infourbi/internal/apierror"
	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/negocio"
	"github.com/juliosincable/infourbi/internal/service"
)

// MensajeConfirmarEliminar is the confirmation shown before deleting a negocio.
const MensajeConfirmarEliminar = "¿Estás seguro de que quieres eliminar este negocio?"

type NegociosHandler struct{ svc service.NegocioService }

func NewNegociosHandler(svc service.NegocioService) *NegociosHandler {
	return &NegociosHandler{svc: svc}
}

// Listar pages negocios by nombre; ?q= narrows to a case-sensitive prefix.
func (h *NegociosHandler) Listar(c *gin.Context) {
	p, ok := parsePagination(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("q"), p)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NegociosHandler) Obtener(c *gin.Context) {
	n, err := h.svc.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// Ficha returns the read-only field dump of a negocio.
func (h *NegociosHandler) Ficha(c *gin.Context) {
	resp, err := h.svc.Ficha(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NegociosHandler) FichaPDF(c *gin.Context) {
	n, err := h.svc.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	pdf, err := infra.FichaPDF(n.Nombre, negocio.Ficha(n))
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="negocio_%s.pdf"`, n.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *NegociosHandler) Crear(c *gin.Context) {
	var req dto.NegocioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	n, err := h.svc.Crear(c.Request.Context(), req, usuarioID(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NegociosHandler) Actualizar(c *gin.Context) {
	var req dto.NegocioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	n, err := h.svc.Actualizar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// Formulario applies a list of field edits (PATCH /v1/negocios/:id/formulario).
func (h *NegociosHandler) Formulario(c *gin.Context) {
	var req dto.FormularioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	n, err := h.svc.EditarFormulario(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// Eliminar needs ?confirmar=true; without it nothing is deleted and the
// confirmation text is returned with 428.
func (h *NegociosHandler) Eliminar(c *gin.Context) {
	if !strings.EqualFold(c.Query("confirmar"), "true") {
		c.JSON(http.StatusPreconditionRequired, apierror.Confirmation{
			Detail:    "Se requiere confirmacion",
			Confirmar: MensajeConfirmarEliminar,
		})
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), c.Param("id")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NegociosHandler) Lugares(c *gin.Context) {
	items, err := h.svc.Lugares(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *NegociosHandler) Productos(c *gin.Context) {
	items, err := h.svc.Productos(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *NegociosHandler) Eventos(c *gin.Context) {
	items, err := h.svc.Eventos(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *NegociosHandler) DePropietario(c *gin.Context) {
	items, err := h.svc.DePropietario(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
