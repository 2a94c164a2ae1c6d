package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"weather-api/utils"

	"github.com/gin-gonic/gin"
)

type rateLimitEntry struct {
	count     int
	resetTime time.Time
	locked    bool
	lockUntil time.Time
}

// RateLimiter is a fixed-window limiter keyed by client IP, method and route
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

// getRealIP extracts the real IP from request headers
func getRealIP(c *gin.Context) string {
	// Priority: X-Forwarded-For (first IP) > X-Real-IP > ClientIP
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	realIP := c.GetHeader("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	return c.ClientIP()
}

func getRateLimitKey(ip string, method string, endpoint string) string {
	return fmt.Sprintf("%s:%s:%s", ip, method, endpoint)
}

// Middleware allows maxRequests per window and locks the caller out for
// lockDuration once the limit is exceeded.
func (l *RateLimiter) Middleware(maxRequests int, window time.Duration, lockDuration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := getRateLimitKey(getRealIP(c), c.Request.Method, c.FullPath())

		l.mu.Lock()
		allowed, message := l.allow(key, maxRequests, window, lockDuration)
		l.mu.Unlock()

		if !allowed {
			utils.TooManyRequestsResponse(c, message)
			c.Abort()
			return
		}
		c.Next()
	}
}

// allow must be called with l.mu held
func (l *RateLimiter) allow(key string, maxRequests int, window, lockDuration time.Duration) (bool, string) {
	now := l.now()
	entry, exists := l.entries[key]

	if !exists {
		l.entries[key] = &rateLimitEntry{count: 1, resetTime: now.Add(window)}
		return true, ""
	}

	if entry.locked {
		if now.Before(entry.lockUntil) {
			return false, fmt.Sprintf("Too many requests. Locked until %s", entry.lockUntil.Format(time.RFC3339))
		}
		// Lock expired, reset
		entry.locked = false
		entry.count = 1
		entry.resetTime = now.Add(window)
		return true, ""
	}

	if now.After(entry.resetTime) {
		entry.count = 1
		entry.resetTime = now.Add(window)
		return true, ""
	}

	entry.count++
	if entry.count > maxRequests {
		entry.locked = true
		entry.lockUntil = now.Add(lockDuration)
		return false, fmt.Sprintf("Too many requests. Locked for %s", lockDuration)
	}
	return true, ""
}

// RunCleanup drops stale entries every interval until ctx is done
func (l *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(interval)
		}
	}
}

func (l *RateLimiter) cleanup(grace time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.entries {
		if !entry.locked && now.After(entry.resetTime.Add(grace)) {
			delete(l.entries, key)
		}
		if entry.locked && now.After(entry.lockUntil.Add(grace)) {
			delete(l.entries, key)
		}
	}
}
