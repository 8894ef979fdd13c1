package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/wonny/backtester/internal/observability"
	"github.com/wonny/backtester/pkg/logger"
	"github.com/wonny/backtester/pkg/redis"
)

// RateLimit throttles computation-triggering routes per client IP.
// Redis is used when enabled so limits hold across replicas; otherwise
// each process keeps its own token buckets.
type RateLimit struct {
	redis  *redis.RateLimiter
	local  *cache.Cache
	limit  int
	window time.Duration
	logger *logger.Logger
}

// NewRateLimit creates the limiter. limiter may be nil.
func NewRateLimit(limiter *redis.RateLimiter, limit int, window time.Duration, log *logger.Logger) *RateLimit {
	return &RateLimit{
		redis:  limiter,
		local:  cache.New(2*window, 2*window),
		limit:  limit,
		window: window,
		logger: log.WithComponent("ratelimit"),
	}
}

// Wrap limits next under route's label
func (rl *RateLimit) Wrap(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(r, ip) {
			observability.RateLimitedTotal.WithLabelValues(route).Inc()
			rl.logger.WithFields(map[string]interface{}{
				"route":  route,
				"client": ip,
			}).Warn("Rate limit exceeded")

			w.Header().Set("Retry-After", retryAfter(rl.window))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
		next(w, r)
	})
}

func (rl *RateLimit) allow(r *http.Request, ip string) bool {
	if rl.limit <= 0 {
		return true
	}

	if rl.redis != nil && rl.redis.Enabled() {
		allowed, _, err := rl.redis.Allow(r.Context(), redis.RateLimitConfig{
			Key:    "submit:" + ip,
			Limit:  rl.limit,
			Window: rl.window,
		})
		if err == nil {
			return allowed
		}
		rl.logger.WithError(err).Warn("Redis rate limit failed, using local limiter")
	}

	return rl.bucket(ip).Allow()
}

func (rl *RateLimit) bucket(ip string) *rate.Limiter {
	if v, ok := rl.local.Get(ip); ok {
		rl.local.Set(ip, v, cache.DefaultExpiration)
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.limit)), rl.limit)
	if err := rl.local.Add(ip, lim, cache.DefaultExpiration); err != nil {
		if v, ok := rl.local.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
