package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"square.ai/skill-gateway/app/interfaces/http/middleware"
	"square.ai/skill-gateway/app/interfaces/http/routes/health"
	v1 "square.ai/skill-gateway/app/interfaces/http/routes/v1"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
	_ "square.ai/skill-gateway/docs"
)

const shutdownTimeout = 10 * time.Second

type HttpServer struct {
	engine      *gin.Engine
	server      *http.Server
	v1Route     *v1.V1Route
	healthRoute *health.HealthRoute
}

func NewHttpServer(v1Route *v1.V1Route, healthRoute *health.HealthRoute) *HttpServer {
	gin.SetMode(gin.ReleaseMode)
	server := HttpServer{
		engine:      gin.New(),
		v1Route:     v1Route,
		healthRoute: healthRoute,
	}
	server.engine.Use(
		gin.Recovery(),
		middleware.CORS(),
		middleware.LoggerMiddleware(logger.GetLogger()),
	)
	server.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	server.healthRoute.RegisterRouter(server.engine)
	server.v1Route.RegisterRouter(server.engine.Group("/"))
	return &server
}

// Handler exposes the engine for tests.
func (httpServer *HttpServer) Handler() http.Handler {
	return httpServer.engine
}

func (httpServer *HttpServer) Run() error {
	httpServer.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", environment_variables.EnvironmentVariables.HTTP_PORT),
		Handler: httpServer.engine,
	}
	logger.GetLogger().Infof("http server listening on %s", httpServer.server.Addr)
	if err := httpServer.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (httpServer *HttpServer) Shutdown(ctx context.Context) error {
	if httpServer.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return httpServer.server.Shutdown(ctx)
}
