package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-form-service/http/controller"
	middlewares "github.com/tnqbao/gau-form-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)
	r.Use(middles.TelemetryMiddleware)

	r.GET("/healthz", ctrl.HealthCheck)

	apiRoutes := r.Group("/api/v1")
	{
		otpRoutes := apiRoutes.Group("/otp")
		{
			otpRoutes.POST("/request", ctrl.RequestOtp)
			otpRoutes.POST("/verify", ctrl.VerifyOtp)
		}

		formRoutes := apiRoutes.Group("/forms")
		{
			formRoutes.Use(middles.AuthMiddleware)
			formRoutes.Use(middlewares.RequirePermission("user", "admin"))

			formRoutes.POST("/submissions", ctrl.CreateSubmission)
			formRoutes.GET("/submissions", ctrl.ListSubmissions)
			formRoutes.GET("/submissions/:id", ctrl.GetSubmission)
			formRoutes.PUT("/submissions/:id", ctrl.UpdateSubmission)
			formRoutes.DELETE("/submissions/:id", ctrl.DeleteSubmission)
			formRoutes.GET("/submissions/:id/attachments/:attachment_id", ctrl.DownloadAttachment)
		}
	}
	return r
}
