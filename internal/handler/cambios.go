package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/juliosincable/infourbi/internal/cambios"
)

// Cambios streams store change events as Server-Sent Events
// (GET /v1/cambios?colecciones=paises,estados). The subscription is closed
// when the client goes away.
func Cambios(hub *cambios.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cols []string
		for _, col := range strings.Split(c.Query("colecciones"), ",") {
			if col = strings.TrimSpace(col); col != "" {
				cols = append(cols, col)
			}
		}
		sub := hub.Subscribe(cols...)
		defer sub.Close()

		sseHeaders(c)
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-c.Request.Context().Done():
				return
			case ev, ok := <-sub.Eventos():
				if !ok {
					return
				}
				if sub.PerdioEventos() {
					// the client missed something, it must refetch
					c.SSEvent("perdidos", gin.H{})
				}
				c.SSEvent("cambio", ev)
				c.Writer.Flush()
			case <-ticker.C:
				c.SSEvent("ping", gin.H{})
				c.Writer.Flush()
			}
		}
	}
}
