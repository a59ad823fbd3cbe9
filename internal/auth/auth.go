package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// FunctionAuthMiddleware requires a service-role bearer token on the function
// endpoints. With an empty secret every request passes, for local runs and
// deployments where the gateway authenticates.
func FunctionAuthMiddleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractTokenFromRequest(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			claims, err := ParseFunctionToken(token, secret)
			if err != nil {
				logger.Warn("Rejected function call", zap.String("path", r.URL.Path), zap.Error(err))
				writeUnauthorized(w, "invalid token")
				return
			}

			logger.Debug("Function call authorised", zap.String("path", r.URL.Path), zap.String("subject", claims.Subject))
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
