package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/juliosincable/infourbi/internal/dto"
	"github.com/juliosincable/infourbi/internal/ubicacion"
)

const heartbeat = 25 * time.Second

// SeleccionHandler exposes the caller's cascading location selector.
type SeleccionHandler struct{ sesiones *ubicacion.Sesiones }

func NewSeleccionHandler(sesiones *ubicacion.Sesiones) *SeleccionHandler {
	return &SeleccionHandler{sesiones: sesiones}
}

func (h *SeleccionHandler) selector(c *gin.Context) (*ubicacion.Selector, bool) {
	sel, err := h.sesiones.Obtener(c.Request.Context(), usuarioID(c))
	if err != nil {
		responderError(c, err)
		return nil, false
	}
	return sel, true
}

// Vista returns the current snapshot, opening the selector on first use.
func (h *SeleccionHandler) Vista(c *gin.Context) {
	sel, ok := h.selector(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sel.Vista())
}

// Evento applies one selector event. Validation failures answer 422 and
// leave the selector as it was.
func (h *SeleccionHandler) Evento(c *gin.Context) {
	var req dto.EventoSeleccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ev, err := ubicacion.ParsearEvento(req.Tipo, ubicacion.Nivel(req.Nivel), req.ID, req.Nombre)
	if err != nil {
		responderError(c, err)
		return
	}
	sel, ok := h.selector(c)
	if !ok {
		return
	}
	v, err := sel.Aplicar(c.Request.Context(), ev)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *SeleccionHandler) Cerrar(c *gin.Context) {
	h.sesiones.Cerrar(usuarioID(c))
	c.Status(http.StatusNoContent)
}

// Stream sends a "vista" event after every change of the selector until
// the client disconnects or the selector is closed.
func (h *SeleccionHandler) Stream(c *gin.Context) {
	sel, ok := h.selector(c)
	if !ok {
		return
	}
	vistas, stop := sel.Observar()
	defer stop()

	sseHeaders(c)
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case v, ok := <-vistas:
			if !ok {
				c.SSEvent("cerrado", gin.H{})
				c.Writer.Flush()
				return
			}
			c.SSEvent("vista", v)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{})
			c.Writer.Flush()
		}
	}
}

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
}
