package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"medialib/internal/infrastructure/ratelimit"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
	"medialib/pkg/response"
)

// RateLimit spends one token of action per request. Callers are keyed by
// uid when authenticated, otherwise by client IP.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := UID(c)
			if key == "" {
				key = c.RealIP()
			}

			allowed, wait := limiter.Allow(key, action)
			if !allowed {
				logger.Warn("Rate limit hit: key=%s, action=%s, retry in %v", key, action, wait)
				c.Response().Header().Set("Retry-After", retryAfter(wait))
				return response.Error(c, errors.TooManyRequests("Too many requests, slow down"))
			}

			return next(c)
		}
	}
}

func retryAfter(wait time.Duration) string {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
