// Package admin wires the operator-facing management API.
package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hostsuite/resellerd/internal/account"
	"github.com/hostsuite/resellerd/internal/auth"
	"github.com/hostsuite/resellerd/internal/config"
	"github.com/hostsuite/resellerd/internal/http/api/admin/handlers"
	"github.com/hostsuite/resellerd/internal/packages"
)

// RegisterAdminRoutes mounts the admin API on the given engine.
func RegisterAdminRoutes(engine *gin.Engine, cfg *config.Config, db *gorm.DB, svc *account.Service, catalog *packages.Catalog) {
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(cfg.Operator, cfg.JWT)
	accountHandler := handlers.NewAccountHandler(svc)
	packageHandler := handlers.NewPackageHandler(catalog)

	engine.GET("/healthz", healthHandler.Healthz)

	v0 := engine.Group("/v0/admin")
	v0.POST("/login", authHandler.Login)

	authed := v0.Group("")
	authed.Use(adminAuthMiddleware(cfg.JWT))
	{
		authed.GET("/packages", packageHandler.List)

		authed.POST("/accounts", accountHandler.Create)
		authed.GET("/accounts", accountHandler.List)
		authed.GET("/accounts/by-username/:username", accountHandler.Get)
		authed.POST("/accounts/:id/enable", accountHandler.Enable)
		authed.POST("/accounts/:id/disable", accountHandler.Disable)
		authed.POST("/accounts/:id/transfer/enable", accountHandler.EnableTransfer)
		authed.POST("/accounts/:id/transfer/disable", accountHandler.DisableTransfer)
	}
}

// adminAuthMiddleware rejects requests without a valid bearer token.
func adminAuthMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		sub, errVerify := auth.VerifyToken(jwtCfg, strings.TrimPrefix(header, "Bearer "))
		if errVerify != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("operator", sub)
		c.Next()
	}
}
