package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"casetracker/metrics"

	"github.com/gorilla/mux"
)

// rateLimitMiddleware provides rate limiting per client IP
func (a *API) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getRealIP(r, a.config.API.TrustProxy, a.config.API.TrustedProxyNetworks)
		if !a.limiter.Allow(r.Context(), ip) {
			a.logger.Debugw("Rate limit exceeded", "ip", ip, "backend", a.limiter.Backend())
			a.writeRateLimitResponse(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	exposed := strings.Join([]string{
		"Location",
		"Link",
		"X-Total-Count",
		requestIDHeader,
		a.alertHeader(),
		a.errorHeader(),
		a.paramsHeader(),
	}, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range a.config.API.AllowedOrigins {
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				break
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", exposed)
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Add HSTS if TLS is enabled
		if a.config.API.TLS {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request count and latency per route template
func (a *API) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
