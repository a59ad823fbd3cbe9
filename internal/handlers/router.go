package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ms-reminders/internal/auth"
	"ms-reminders/internal/config"
)

// NewRouter wires the function endpoints, probes and metrics. OPTIONS is
// registered on every function route so the CORS middleware can answer preflights.
func NewRouter(cfg config.Config, reminders *ReminderHandler, health *HealthHandler, gatherer prometheus.Gatherer, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(auth.CORSMiddleware(cfg))
	router.MethodNotAllowedHandler = http.HandlerFunc(reminders.methodNotAllowed)

	functionAuth := preflightOrAuth(auth.FunctionAuthMiddleware(cfg.FunctionsJWTSecret, logger))
	functionMethods := []string{http.MethodPost, http.MethodGet, http.MethodOptions}
	router.Handle("/functions/v1/send-appointment-reminders",
		functionAuth(http.HandlerFunc(reminders.SendAppointmentReminders))).Methods(functionMethods...)
	router.Handle("/functions/v1/send-medication-reminders",
		functionAuth(http.HandlerFunc(reminders.SendMedicationReminders))).Methods(functionMethods...)

	router.HandleFunc("/healthz", health.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", health.HandleReadiness).Methods(http.MethodGet)
	router.HandleFunc("/livez", health.HandleLiveness).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return router
}

// preflightOrAuth skips authentication for OPTIONS requests.
func preflightOrAuth(authMiddleware func(http.Handler) http.Handler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		authed := authMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}
