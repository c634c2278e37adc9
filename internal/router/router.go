// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/restovia/table-reservation/internal/config"
	"github.com/restovia/table-reservation/internal/handler"
	"github.com/restovia/table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers staff authentication routes.  Unauthenticated
// operations live under /v1/auth; the protected identity endpoint lives
// under /v1/staff.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh_token body without a JWT, or revokes every
	// session when called with a bearer token and no body.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1/staff", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers the guest-facing booking endpoints.  Guests are
// anonymous, so no JWT middleware applies; the rate limiter keys on IP.
// The availability read path sits behind the Redis response cache because
// it is recomputed per query and its answer is advisory anyway.
func RegisterPublic(e *echo.Echo, av *handler.AvailabilityHandler, res *handler.ReservationHandler,
	cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(rlCfg, rdb)
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	e.GET("/v1/restaurants/:id/availability", av.Get, limiter, cache)
	e.GET("/v1/restaurants/:id/deposit-preview", res.DepositPreview, limiter)
	e.POST("/v1/restaurants/:id/reservations", res.Create, limiter)
	e.GET("/v1/reservations/:token", res.Get, limiter)
	e.DELETE("/v1/reservations/:token", res.Cancel, limiter)
}
