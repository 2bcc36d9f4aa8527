package http

import (
	"context"

	"salesorch_backend/internal/events"
	"salesorch_backend/platform/config"
	"salesorch_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router itself needs:
// HTTP/CORS settings plus the JWT secret for the auth middleware.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs the readiness probe. In practice it is the pgx
// pool adapter; the indirection keeps pgx out of the HTTP layer.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is what the composition root hands the router: shared
// infrastructure plus the modules to mount.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
