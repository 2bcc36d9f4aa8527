package http

import (
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes. The router only
// knows this interface, so adding a feature never touches router code.
type Module interface {
	// Name identifies the module in startup logs.
	Name() string
	// RegisterRoutes mounts the module's endpoints on the shared groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups and shared middleware a module
// needs when registering itself.
type RouterContext struct {
	// Engine is the root engine, for modules that mount outside /api/v1.
	Engine *gin.Engine
	// V1 is /api/v1 without authentication.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind JWT auth and tenant scoping.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin, additionally requiring the admin role.
	Admin *gin.RouterGroup
	// Config exposes only the JWT settings, for modules that build their
	// own auth-adjacent middleware.
	Config config.JWTConfig
	// AuthMiddleware is the shared JWT middleware instance.
	AuthMiddleware gin.HandlerFunc
	// AuthRateLimiter applies the stricter per-IP limit for login-style routes.
	AuthRateLimiter *httpkit.AuthRateLimiter
}
