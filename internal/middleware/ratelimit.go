package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jobboardhq/job-board-api/internal/ratelimit"
)

// RateLimitPerIP applies a fixed-window limit keyed by route name and
// client IP. Exceeding it returns 429 with a Retry-After header.
func RateLimitPerIP(
	limiter ratelimit.Limiter,
	route string,
	limit int,
	window time.Duration,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := limiter.Allow(route+":"+clientIP(r), limit, window)
			if !decision.Allowed {
				retryAfter := int(decision.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeDetail(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// RealIP middleware rewrites RemoteAddr from forwarding headers before
	// this runs.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
