package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/apierror"
	"github.com/juliosincable/infourbi/internal/service"
)

const purgeInterval = 5 * time.Minute

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter counts requests per client IP. Expired entries are removed
// by Run; without it the map only grows.
type RateLimiter struct {
	limit  int
	window time.Duration
	name   string

	mu      sync.Mutex
	entries map[string]*rateEntry
	now     func() time.Time

	rechazar func(c *gin.Context)
}

// NewRateLimiter returns a general-purpose limiter of limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		name:    "api",
		entries: make(map[string]*rateEntry),
		now:     time.Now,
		rechazar: func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
		},
	}
}

// NewLoginRateLimiter limits login attempts to 20 per minute per IP and
// answers with the auth/too-many-requests code.
func NewLoginRateLimiter() *RateLimiter {
	l := NewRateLimiter(20, time.Minute)
	l.name = "login"
	l.rechazar = func(c *gin.Context) {
		codigo := service.CodigoDemasiadosIntentos
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.WithCode(codigo, service.MensajeError(codigo)))
	}
	return l
}

func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		permitido, reintento := l.permitir(c.ClientIP())
		if !permitido {
			c.Header("Retry-After", strconv.Itoa(int(reintento.Round(time.Second)/time.Second)))
			l.rechazar(c)
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) permitir(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = entry
	}
	entry.count++
	if entry.count > l.limit {
		return false, entry.windowEnd.Sub(now)
	}
	return true, 0
}

// Purgar drops expired entries and returns how many were removed.
func (l *RateLimiter) Purgar() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, entry := range l.entries {
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			n++
		}
	}
	return n
}

// Run purges expired entries periodically until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Purgar(); n > 0 {
				log.Debug().
					Str("component", "rate_limiter").
					Str("limiter", l.name).
					Int("purged", n).
					Msg("rate limiter entries purged")
			}
		}
	}
}
