package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/api/http/handlers"
	"github.com/spec-kit/reservation-service/internal/auth"
	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/docstore/memory"
	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/observability"
	"github.com/spec-kit/reservation-service/internal/repository"
	"github.com/spec-kit/reservation-service/internal/service"
)

type testServer struct {
	app    *fiber.App
	store  *memory.Store
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	store.Seed(docstore.CollectionTables,
		docstore.Document{"id": "T2", "capacity": 2, "section": "main"},
		docstore.Document{"id": "T4", "capacity": 4, "section": "main"},
		docstore.Document{"id": "T6", "capacity": 6, "section": "patio"},
	)

	tables := repository.NewTableRepository(store)
	reservations := repository.NewReservationRepository(store)
	requests := repository.NewStaffingRequestRepository(store)
	staffing := service.NewStaffingService(service.StaffingDependencies{
		RequestRepo: requests,
		OnCallRepo:  repository.NewOnCallRepository(store),
	})
	resSvc := service.NewReservationService(service.ReservationDependencies{
		TableRepo:       tables,
		ReservationRepo: reservations,
		Staffing:        staffing,
	})
	holdSvc := service.NewHoldService(service.HoldDependencies{
		TableRepo:       tables,
		ReservationRepo: reservations,
		Now:             func() time.Time { return time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC) },
	})
	tokens := auth.NewTokenManager("test-secret", 60)

	app := NewApp("test", zap.NewNop(), nil, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "v0", store, nil),
		Reservations:   handlers.NewReservationsHandler(resSvc, time.UTC),
		Holds:          handlers.NewHoldsHandler(holdSvc),
		Floor:          handlers.NewFloorHandler(service.NewFloorService(tables, requests)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})
	return &testServer{app: app, store: store, tokens: tokens}
}

func (s *testServer) token(t *testing.T, role domain.StaffRole) string {
	t.Helper()
	tok, _, err := s.tokens.GenerateToken(domain.StaffMember{ID: "staff-1", Role: role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func reservationPayload(party any, name string) map[string]any {
	return map[string]any{
		"reservation_date": "2025-03-14",
		"start_time":       "19:00",
		"party_size":       party,
		"customer_name":    name,
		"source":           "web",
	}
}

func TestCreateReservation_Assigns(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/reservations", reservationPayload(3, "Ada"), "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["ok"])
	assert.Nil(t, body["debug"])

	res := body["reservation"].(map[string]any)
	assert.Equal(t, "T4", res["table_id"])
	assert.Equal(t, "booked", res["status"])
}

func TestCreateReservation_AcceptsStringPartySizeAndDebug(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/reservations?debug=1", reservationPayload("8", "Big"), "")
	require.Equal(t, http.StatusCreated, status)

	res := body["reservation"].(map[string]any)
	assert.Nil(t, res["table_id"])
	assert.Contains(t, res["tags"], "oversize")

	debug := body["debug"].(map[string]any)
	decision := debug["decision"].(map[string]any)
	assert.Equal(t, "oversize", decision["outcome"])
	staffing := debug["staffing"].(map[string]any)
	assert.Equal(t, true, staffing["ok"])
	assert.Equal(t, 1, s.store.Count(docstore.CollectionStaffingRequests))
}

func TestCreateReservation_Duplicate(t *testing.T) {
	s := newTestServer(t)

	status, first := s.do(t, http.MethodPost, "/api/reservations", reservationPayload(2, "Grace"), "")
	require.Equal(t, http.StatusCreated, status)

	status, second := s.do(t, http.MethodPost, "/api/reservations", reservationPayload(2, "GRACE"), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, second["duplicate"])
	assert.Equal(t,
		first["reservation"].(map[string]any)["id"],
		second["reservation"].(map[string]any)["id"])
	assert.Equal(t, 1, s.store.Count(docstore.CollectionReservations))
}

func TestCreateReservation_Validation(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/reservations", map[string]any{"start_time": "19:00"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])

	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	fields := errBody["details"].(map[string]any)["fields"]
	assert.ElementsMatch(t, []any{"reservation_date", "party_size", "customer_name"}, fields)
}

func TestCreateReservation_StoreFailure(t *testing.T) {
	s := newTestServer(t)
	s.store.Fail("create", docstore.CollectionReservations, &docstore.Error{
		Op: "create", Status: http.StatusServiceUnavailable, Message: "maintenance",
	})

	status, body := s.do(t, http.MethodPost, "/api/reservations", reservationPayload(2, "Ada"), "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "UPSTREAM_ERROR", body["error"].(map[string]any)["code"])
}

func TestApplyHolds(t *testing.T) {
	s := newTestServer(t)
	_, _ = s.do(t, http.MethodPost, "/api/reservations", reservationPayload(3, "Ada"), "")

	status, _ := s.do(t, http.MethodPost, "/api/holds/apply", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/holds/apply", nil, s.token(t, domain.StaffRoleHost))
	assert.Equal(t, http.StatusForbidden, status)

	status, body := s.do(t, http.MethodPost, "/api/holds/apply?debug=1", nil, s.token(t, domain.StaffRoleManager))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 1, body["applied"])
	assert.Len(t, body["results"], 1)

	status, body = s.do(t, http.MethodGet, "/api/tables", nil, s.token(t, domain.StaffRoleHost))
	require.Equal(t, http.StatusOK, status)
	for _, raw := range body["tables"].([]any) {
		table := raw.(map[string]any)
		if table["id"] == "T4" {
			assert.Equal(t, "reserved", table["status"])
		}
	}
}

func TestStaffReservationViews(t *testing.T) {
	s := newTestServer(t)
	_, created := s.do(t, http.MethodPost, "/api/reservations", reservationPayload(2, "Ada"), "")
	id := created["reservation"].(map[string]any)["id"].(string)
	host := s.token(t, domain.StaffRoleHost)

	status, body := s.do(t, http.MethodGet, "/api/reservations?date=2025-03-14", nil, host)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["reservations"], 1)

	status, body = s.do(t, http.MethodPatch, "/api/reservations/"+id+"/status", map[string]any{"status": "seated"}, host)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "seated", body["reservation"].(map[string]any)["status"])

	status, _ = s.do(t, http.MethodPatch, "/api/reservations/"+id+"/status", map[string]any{"status": "lost"}, host)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/api/staffing-requests?date=2025-03-14", nil, host)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["requests"])
}

func TestHealthAndUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/health/ready", nil, "")
	require.Equal(t, http.StatusOK, status)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "ok", deps["store"])
	assert.Equal(t, "disabled", deps["redis"])

	status, body = s.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := NewApp("test", zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:        handlers.NewHealthHandler("test", "v0", memory.New(), nil),
		ExposeMetrics: true,
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestCreateReservation_LargePartyIsOversize(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/reservations?debug=1", reservationPayload(120, "Banquet"), "")
	require.Equal(t, http.StatusCreated, status, body)

	res := body["reservation"].(map[string]any)
	assert.Nil(t, res["table_id"])
	assert.EqualValues(t, 120, res["party_size"])
	assert.Contains(t, res["tags"], "oversize")

	staffing := body["debug"].(map[string]any)["staffing"].(map[string]any)
	assert.Equal(t, true, staffing["ok"])
	assert.Equal(t, "host", staffing["detail"].(map[string]any)["role"])
}

func TestCreateReservation_RejectsMalformedFields(t *testing.T) {
	tests := []struct {
		name  string
		patch map[string]any
	}{
		{name: "fractional party", patch: map[string]any{"party_size": 2.9}},
		{name: "fractional block", patch: map[string]any{"block_minutes": 90.5}},
		{name: "date with trailing garbage", patch: map[string]any{"reservation_date": "2025-03-14garbage"}},
		{name: "clock with bad seconds", patch: map[string]any{"start_time": "19:00:zz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			payload := reservationPayload(2, "Ada")
			for k, v := range tt.patch {
				payload[k] = v
			}

			status, body := s.do(t, http.MethodPost, "/api/reservations", payload, "")
			require.Equal(t, http.StatusBadRequest, status, body)
			assert.Equal(t, "VALIDATION_FAILED", body["error"].(map[string]any)["code"])
			assert.Equal(t, 0, s.store.Count(docstore.CollectionReservations))
		})
	}
}
