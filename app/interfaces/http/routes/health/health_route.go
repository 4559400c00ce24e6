package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"square.ai/skill-gateway/app/infrastructure/cache"
)

const readinessTimeout = 3 * time.Second

type HealthRoute struct {
	db           *gorm.DB
	cacheService cache.CacheService
}

func NewHealthRoute(db *gorm.DB, cacheService cache.CacheService) *HealthRoute {
	return &HealthRoute{
		db:           db,
		cacheService: cacheService,
	}
}

func (route *HealthRoute) RegisterRouter(router gin.IRouter) {
	healthRouter := router.Group("/health")
	healthRouter.GET("/heartbeat", route.heartbeat)
	healthRouter.GET("/readiness", route.readiness)
}

type HeartbeatResponse struct {
	IsAlive bool `json:"is_alive"`
}

type ReadinessResponse struct {
	IsReady  bool   `json:"is_ready"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Heartbeat
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} HeartbeatResponse
// @Router /health/heartbeat [get]
func (route *HealthRoute) heartbeat(reqCtx *gin.Context) {
	reqCtx.JSON(http.StatusOK, HeartbeatResponse{IsAlive: true})
}

// Readiness
// @Summary Readiness probe
// @Description Checks the database and the cache.
// @Tags system
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /health/readiness [get]
func (route *HealthRoute) readiness(reqCtx *gin.Context) {
	ctx, cancel := context.WithTimeout(reqCtx.Request.Context(), readinessTimeout)
	defer cancel()

	resp := ReadinessResponse{IsReady: true, Database: "ok", Cache: "ok"}
	if err := route.pingDB(ctx); err != nil {
		resp.IsReady = false
		resp.Database = err.Error()
	}
	if err := route.cacheService.HealthCheck(ctx); err != nil {
		resp.IsReady = false
		resp.Cache = err.Error()
	}
	status := http.StatusOK
	if !resp.IsReady {
		status = http.StatusServiceUnavailable
	}
	reqCtx.JSON(status, resp)
}

func (route *HealthRoute) pingDB(ctx context.Context) error {
	sqlDB, err := route.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
