package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"consult-backend/internal/catalogapi"
	"consult-backend/internal/consultations"
	"consult-backend/internal/services/health"
	"consult-backend/internal/shared/config"
	"consult-backend/internal/shared/metrics"
	"consult-backend/internal/shared/server/middleware"
	"consult-backend/internal/shared/server/respond"
)

// recommendGroup is the rate-limit group for endpoints that run the engine.
const recommendGroup = "RECOMMEND"

// RouterDeps carries the handlers and services the router mounts.
type RouterDeps struct {
	Config              config.Config
	Tokens              middleware.TokenVerifier
	Health              *health.Service
	CatalogHandler      *catalogapi.Handler
	ConsultationHandler *consultations.Handler
	RateLimiter         *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		st := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.RegisterRoutes(api)
	}

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Tokens),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				recommendGroup: {Rate: deps.Config.RecommendRatePerSec, Burst: deps.Config.RecommendBurst},
			},
			GroupFor: rateLimitGroup,
			Limiter:  deps.RateLimiter,
		}),
	)
	registerMeRoutes(authed)
	if deps.ConsultationHandler != nil {
		deps.ConsultationHandler.RegisterRoutes(authed)
	}

	return r
}

// rateLimitGroup puts engine-running endpoints in the RECOMMEND bucket and
// leaves reads unlimited.
func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch c.FullPath() {
	case "/api/v1/recommendations/preview", "/api/v1/consultations":
		return recommendGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
