package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagelink/backend/pkg/logger"
)

// RateLimiter counts requests per client in fixed windows. Each client's
// window starts at its first request, so one busy client never resets the
// count for everyone else.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientWindow
	rate      int           // requests per window
	window    time.Duration // window length
	lastSweep time.Time
}

type clientWindow struct {
	count   int
	startAt time.Time
}

// NewRateLimiter creates a rate limiter allowing rate requests per window
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*clientWindow),
		rate:      rate,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Allow records one request for the client and reports whether it fits
// in the current window
func (l *RateLimiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.evictExpired(now)

	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.startAt) > l.window {
		l.clients[clientIP] = &clientWindow{count: 1, startAt: now}
		return true
	}
	if w.count >= l.rate {
		return false
	}
	w.count++
	return true
}

// evictExpired drops windows that ended before now, at most once per
// window length, so the map stays bounded by the active client set.
// Caller holds l.mu.
func (l *RateLimiter) evictExpired(now time.Time) {
	if now.Sub(l.lastSweep) <= l.window {
		return
	}
	for ip, w := range l.clients {
		if now.Sub(w.startAt) > l.window {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit middleware limits requests per client IP
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !limiter.Allow(clientIP) {
			logger.Warn(c.Request.Context(), "rate limit exceeded",
				"client_ip", clientIP,
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
