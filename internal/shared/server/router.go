package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"filings-backend/internal/auth"
	"filings-backend/internal/filings"
	"filings-backend/internal/services/health"
	"filings-backend/internal/shared/config"
	"filings-backend/internal/shared/server/middleware"
	"filings-backend/internal/shared/server/respond"
)

// NewRouter constructs the Gin engine with middleware and routes
// registered over already-built dependencies.
func NewRouter(cfg config.Config, filingsHandler *filings.Handler, sso *auth.SSOService, healthSvc *health.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	sso.RegisterRoutes(api)
	filingsHandler.RegisterRoutes(api)

	return r
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
