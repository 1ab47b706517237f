package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/models"
)

// rateLimitEntry tracks request counts for a single IP within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimit returns middleware enforcing a fixed window of maxRequests per
// window, keyed by client IP. Breaches answer 429 with the given message.
func RateLimit(maxRequests int, window time.Duration, message string) echo.MiddlewareFunc {
	var mu sync.Mutex
	entries := make(map[string]*rateLimitEntry)

	// Expired entries are swept in the background so idle IPs do not pile up.
	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			now := time.Now()
			for ip, entry := range entries {
				if now.Sub(entry.windowStart) > window*2 {
					delete(entries, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := time.Now()

			mu.Lock()
			entry, exists := entries[ip]
			if !exists || now.Sub(entry.windowStart) > window {
				entries[ip] = &rateLimitEntry{count: 1, windowStart: now}
				mu.Unlock()
				return next(c)
			}

			entry.count++
			if entry.count > maxRequests {
				mu.Unlock()
				return c.JSON(http.StatusTooManyRequests, models.Response{
					Success: false,
					Message: message,
				})
			}
			mu.Unlock()
			return next(c)
		}
	}
}

// GeneralLimiter throttles all API traffic.
func GeneralLimiter() echo.MiddlewareFunc {
	return RateLimit(100, 15*time.Minute, "Too many requests from this IP, please try again later.")
}

// AuthLimiter throttles registration and login attempts.
func AuthLimiter() echo.MiddlewareFunc {
	return RateLimit(5, 15*time.Minute, "Too many authentication attempts, please try again later.")
}

// UploadLimiter throttles the multipart upload endpoints.
func UploadLimiter() echo.MiddlewareFunc {
	return RateLimit(30, time.Minute, "Too many uploads, please try again later.")
}
