package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ms-reminders/internal/auth"
	"ms-reminders/internal/config"
	"ms-reminders/internal/models"
	"ms-reminders/internal/reminder"
)

type MockSweepRunner struct {
	mock.Mock
}

func (m *MockSweepRunner) Run(ctx context.Context, kind models.SweepKind, now time.Time) (reminder.SweepResult, error) {
	args := m.Called(ctx, kind, now)
	return args.Get(0).(reminder.SweepResult), args.Error(1)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var handlerNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
		MaxAge:         86400,
	}
}

func newTestRouter(cfg config.Config, runner SweepRunner, db Pinger) http.Handler {
	rh := NewReminderHandler(runner, zap.NewNop())
	rh.now = func() time.Time { return handlerNow }
	return NewRouter(cfg, rh, NewHealthHandler(db, zap.NewNop()), prometheus.NewRegistry(), zap.NewNop())
}

func serve(h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		r.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestSendAppointmentRemindersSuccess(t *testing.T) {
	runner := new(MockSweepRunner)
	runner.On("Run", mock.Anything, models.SweepAppointment, handlerNow).Return(reminder.SweepResult{
		Sweep:    models.SweepAppointment,
		Examined: 1,
		Created:  1,
		Errors:   []*reminder.ItemError{},
	}, nil)

	w := serve(newTestRouter(testConfig(), runner, nil), http.MethodPost, "/functions/v1/send-appointment-reminders", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"success":true,"checked":1,"created":1,"suppressed":0,"errors":[]}`, w.Body.String())
	runner.AssertExpectations(t)
}

func TestSendMedicationRemindersReportsItemErrors(t *testing.T) {
	runner := new(MockSweepRunner)
	runner.On("Run", mock.Anything, models.SweepMedication, handlerNow).Return(reminder.SweepResult{
		Sweep:      models.SweepMedication,
		Examined:   3,
		Created:    1,
		Suppressed: 1,
		Errors: []*reminder.ItemError{
			{ID: "P3", Kind: reminder.ErrorKindLookup, Err: errors.New("timeout")},
		},
	}, nil)

	w := serve(newTestRouter(testConfig(), runner, nil), http.MethodGet, "/functions/v1/send-medication-reminders", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"checked":3,"created":1,"suppressed":1,
		"errors":[{"id":"P3","kind":"lookup","error":"timeout"}]}`, w.Body.String())
}

func TestNilItemErrorsEncodeAsEmptyList(t *testing.T) {
	runner := new(MockSweepRunner)
	runner.On("Run", mock.Anything, models.SweepMedication, handlerNow).Return(reminder.SweepResult{}, nil)

	w := serve(newTestRouter(testConfig(), runner, nil), http.MethodPost, "/functions/v1/send-medication-reminders", nil)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{}, body["errors"])
	assert.Equal(t, 0.0, body["checked"])
}

func TestSweepFailureReturns500(t *testing.T) {
	runner := new(MockSweepRunner)
	runner.On("Run", mock.Anything, models.SweepAppointment, handlerNow).
		Return(reminder.SweepResult{}, errors.New("listing appointments: connection refused"))

	w := serve(newTestRouter(testConfig(), runner, nil), http.MethodPost, "/functions/v1/send-appointment-reminders", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"listing appointments: connection refused"}`, w.Body.String())
}

func TestPreflightReturnsCORSHeaders(t *testing.T) {
	runner := new(MockSweepRunner)
	cfg := testConfig()
	cfg.FunctionsJWTSecret = "a-secret-that-is-at-least-32-characters-long"

	w := serve(newTestRouter(cfg, runner, nil), http.MethodOptions, "/functions/v1/send-appointment-reminders", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestFunctionsRequireServiceRoleWhenSecretSet(t *testing.T) {
	secret := "a-secret-that-is-at-least-32-characters-long"
	cfg := testConfig()
	cfg.FunctionsJWTSecret = secret

	runner := new(MockSweepRunner)
	runner.On("Run", mock.Anything, models.SweepAppointment, handlerNow).Return(reminder.SweepResult{}, nil)
	router := newTestRouter(cfg, runner, nil)

	w := serve(router, http.MethodPost, "/functions/v1/send-appointment-reminders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.FunctionClaims{
		Role:             auth.RoleServiceRole,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	w = serve(router, http.MethodPost, "/functions/v1/send-appointment-reminders",
		http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, w.Code)
	runner.AssertNumberOfCalls(t, "Run", 1)
}

func TestUnknownMethodRejected(t *testing.T) {
	runner := new(MockSweepRunner)
	router := newTestRouter(testConfig(), runner, nil)

	for _, path := range []string{"/functions/v1/send-appointment-reminders", "/functions/v1/send-medication-reminders"} {
		w := serve(router, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
		assert.JSONEq(t, `{"error":"method DELETE not allowed"}`, w.Body.String())
	}

	w := serve(router, http.MethodPost, "/functions/v1/send-unknown-reminders", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestReadiness(t *testing.T) {
	w := serve(newTestRouter(testConfig(), new(MockSweepRunner), fakePinger{}), http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UP", resp.Status)
	assert.Equal(t, "OK", resp.Details["database"])

	w = serve(newTestRouter(testConfig(), new(MockSweepRunner), fakePinger{err: errors.New("connection refused")}), http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DOWN", resp.Status)
	assert.Equal(t, "connection refused", resp.Details["database"])
}

func TestLivenessAndHealth(t *testing.T) {
	router := newTestRouter(testConfig(), new(MockSweepRunner), nil)

	w := serve(router, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)

	w = serve(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	w := serve(newTestRouter(testConfig(), new(MockSweepRunner), nil), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
