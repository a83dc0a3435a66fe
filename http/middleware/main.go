package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-filestore-service/http/controller"
)

type Middlewares struct {
	CORSMiddleware      gin.HandlerFunc
	RequestIDMiddleware gin.HandlerFunc
	TracingMiddleware   gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	requestID := RequestIDMiddleware()
	tracing := TracingMiddleware(ctrl.Config.EnvConfig.Grafana.ServiceName)

	return &Middlewares{
		CORSMiddleware:      cors,
		RequestIDMiddleware: requestID,
		TracingMiddleware:   tracing,
	}, nil
}
