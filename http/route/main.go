package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-filestore-service/http/controller"
	middlewares "github.com/tnqbao/gau-filestore-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}
	r.Use(middles.CORSMiddleware, middles.RequestIDMiddleware, middles.TracingMiddleware)

	r.GET("/healthz", ctrl.Health)

	fileRoutes := r.Group(ctrl.Config.EnvConfig.HTTP.Prefix)
	{
		fileRoutes.GET("/list", ctrl.ListFiles)
		fileRoutes.POST("/store", ctrl.StoreFile)
		fileRoutes.GET("/fetch/:name", ctrl.FetchFile)
		fileRoutes.GET("/delete/:name", ctrl.DeleteFile)
		fileRoutes.DELETE("/delete/:name", ctrl.DeleteFile)
	}

	return r
}
