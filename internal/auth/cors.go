package auth

import (
	"net/http"
	"strconv"
	"strings"

	"ms-reminders/internal/config"
)

// CORSMiddleware adds CORS headers to responses based on configuration.
// Preflight requests are answered here with 200 and no body.
func CORSMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedOrigin := matchOrigin(cfg.AllowedOrigins, r.Header.Get("Origin")); allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				if allowedOrigin != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// matchOrigin returns the Access-Control-Allow-Origin value for origin, or "" if
// it is not allowed. A bare "*" allows every caller, including ones that send no Origin.
func matchOrigin(allowed []string, origin string) string {
	for _, a := range allowed {
		if a == "*" {
			return "*"
		}
		if origin != "" && a == origin {
			return origin
		}
	}

	if origin == "" {
		return ""
	}
	// Wildcard subdomains like *.example.com
	for _, a := range allowed {
		if strings.HasPrefix(a, "*.") && strings.HasSuffix(origin, a[1:]) {
			return origin
		}
	}
	return ""
}
