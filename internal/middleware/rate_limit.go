package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/sphinxcode/sagecalculator-api/internal/errs"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

const (
	// MessageRateLimited is sent with the 429 envelope.
	MessageRateLimited = "Too many requests, please try again later"

	limiterIdleTTL     = 10 * time.Minute
	limiterSweepPeriod = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client IP with a token bucket.
//
// A rate of zero disables limiting.
type RateLimitMiddleware struct {
	server *server.Server

	limit rate.Limit
	burst int

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimitMiddleware reads the calculate rate limit from the server config.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	burst := s.Config.Calculate.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &RateLimitMiddleware{
		server:  s,
		limit:   rate.Limit(s.Config.Calculate.RateLimit),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Enabled reports whether requests are limited at all.
func (r *RateLimitMiddleware) Enabled() bool {
	return r.limit > 0
}

// Limit returns the echo middleware enforcing the limit for route.
// Rejected requests fail with 429 and are recorded.
func (r *RateLimitMiddleware) Limit(route string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !r.Enabled() {
			return next
		}

		return func(c echo.Context) error {
			if !r.allow(c.RealIP()) {
				r.RecordRateLimitHit(route)
				GetLogger(c).Warn().
					Str("function", "RateLimit").
					Str("endpoint", route).
					Msg("rate limit exceeded")

				return errs.NewTooManyRequestsError(MessageRateLimited)
			}
			return next(c)
		}
	}
}

// RecordRateLimitHit reports a rejected request to Prometheus and New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.Metrics != nil {
		r.server.Metrics.RecordRateLimited(endpoint)
	}

	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

func (r *RateLimitMiddleware) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	client, ok := r.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = client
	}
	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// sweep drops limiters of clients idle for longer than limiterIdleTTL.
// Callers hold r.mu.
func (r *RateLimitMiddleware) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < limiterSweepPeriod {
		return
	}
	r.lastSweep = now

	for key, client := range r.clients {
		if now.Sub(client.lastSeen) > limiterIdleTTL {
			delete(r.clients, key)
		}
	}
}
