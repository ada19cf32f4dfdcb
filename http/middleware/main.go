package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-form-service/http/controller"
)

type Middlewares struct {
	CORSMiddleware      gin.HandlerFunc
	AuthMiddleware      gin.HandlerFunc
	TelemetryMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	auth := AuthMiddleware(ctrl.Config.EnvConfig)
	telemetry := TelemetryMiddleware(ctrl.Config.EnvConfig.Grafana.ServiceName)

	return &Middlewares{
		CORSMiddleware:      cors,
		AuthMiddleware:      auth,
		TelemetryMiddleware: telemetry,
	}, nil
}
