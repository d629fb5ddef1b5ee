package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/worker"
)

// Health returns a JSON health check response.
// Checks the document store and, when configured, Redis; never exposes
// credentials or internals.
func Health(backend store.Backend, driver string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if backend.Ping(ctx) != nil {
			storeStatus = "error"
		}

		redisStatus := "disabled"
		var dead int64
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else if n, err := worker.NewDeadLetters(rdb).Len(ctx, worker.QueueEmail); err == nil {
				dead = n
			}
		}

		status := http.StatusOK
		if storeStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":     status == http.StatusOK,
			"store":  storeStatus,
			"driver": driver,
			"redis":  redisStatus,
			"dlq":    dead,
		})
	}
}
