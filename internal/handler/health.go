package handler

import (
	"context"
	"net/http"
	"time"

	"facturador/internal/infra"
	"facturador/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity, reports the fiscal circuit breaker
// state and the facturación DLQ depth; never exposes credentials or
// internals.
func Health(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlqDepth int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			// A growing DLQ means comprobantes are stuck past their retry
			// budget and need an operator.
			dlqDepth, _ = worker.DLQLength(ctx, rdb, worker.QueueFacturacion)
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":              status == http.StatusOK,
			"db":              dbStatus,
			"redis":           redisStatus,
			"afip_circuit":    cb.State().String(),
			"dlq_facturacion": dlqDepth,
		})
	}
}
