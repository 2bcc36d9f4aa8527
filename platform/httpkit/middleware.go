// Package httpkit holds the gin middleware and response helpers shared by
// every module: JWT auth, tenant scoping, rate limiting, access logging.
package httpkit

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"salesorch_backend/platform/config"
	"salesorch_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Gin context keys the auth middleware populates.
const (
	ContextUserIDKey   = "userID"
	ContextRolesKey    = "roles"
	ContextTenantIDKey = "tenantID"
)

var errInvalidToken = errors.New("invalid token")

// RequestLogger emits one access-log line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.HTTPRequest(
			c.Request.Method,
			path,
			c.Writer.Status(),
			float64(time.Since(start).Milliseconds()),
			c.ClientIP(),
		)
	}
}

// SecurityHeaders sets the standard hardening headers. HSTS only goes out
// on TLS connections.
func SecurityHeaders() gin.HandlerFunc {
	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
		"Permissions-Policy":      "geolocation=(), microphone=(), camera=()",
	}
	return func(c *gin.Context) {
		for name, value := range headers {
			c.Header(name, value)
		}
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
	log      *logger.Logger
}

func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{rate: r, burst: burst, log: log}
}

func (i *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	if existing, ok := i.limiters.Load(ip); ok {
		return existing.(*rate.Limiter)
	}
	created, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return created.(*rate.Limiter)
}

// RateLimit rejects over-limit clients with 429.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !i.limiterFor(ip).Allow() {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// AuthRateLimiter is the tighter limit for credential endpoints: five
// requests per minute per IP, since login is the brute-force target.
type AuthRateLimiter struct {
	*IPRateLimiter
}

func NewAuthRateLimiter(log *logger.Logger) *AuthRateLimiter {
	return &AuthRateLimiter{IPRateLimiter: NewIPRateLimiter(rate.Limit(5.0/60.0), 5, log)}
}

// AuthRequired validates the bearer access token and stores the user ID,
// roles, and tenant ID on the gin context for downstream middleware.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing token")
			return
		}

		claims, err := accessClaims(raw, cfg)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRolesKey, claimRoles(claims["roles"]))

		tenantID, err := claimTenantID(claims)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		if tenantID != nil {
			c.Set(ContextTenantIDKey, *tenantID)
		}
		c.Next()
	}
}

// RequireTenant rejects tokens without an organization claim. Every data
// route is organization-scoped; only freshly signed-up users without an
// org get past AuthRequired without one.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextTenantIDKey); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no organization"})
			return
		}
		c.Next()
	}
}

// RequireRole gates a route group on one of the token's roles.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Get(ContextRolesKey)
		roles, _ := raw.([]string)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return raw, raw != ""
}

func accessClaims(raw string, cfg config.JWTConfig) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.GetJWTAccessSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	// Only access tokens open API routes.
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return nil, errInvalidToken
	}
	return claims, nil
}

func claimRoles(value any) []string {
	roles := make([]string, 0)
	switch typed := value.(type) {
	case []string:
		roles = append(roles, typed...)
	case []any:
		for _, item := range typed {
			if s, ok := item.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	return roles
}

func claimTenantID(claims jwt.MapClaims) (*uuid.UUID, error) {
	value, ok := claims["tenant_id"].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
