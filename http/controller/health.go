package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports each dependency separately so a degraded backend is
// visible without grepping logs.
func (ctrl *Controller) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	if sqlDB, err := ctrl.Infra.Postgres.DB.DB(); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if err := ctrl.Infra.Redis.Client.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	if info, err := ctrl.Infra.Minio.ServerInfo(ctx); err != nil {
		checks["minio"] = err.Error()
		healthy = false
	} else {
		checks["minio"] = gin.H{"mode": info.Mode, "servers": len(info.Servers)}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": checks})
}
