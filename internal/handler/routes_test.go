package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/evenup/evenup-backend/internal/middleware"
	"github.com/dafibh/evenup/evenup-backend/internal/repository/memory"
	"github.com/dafibh/evenup/evenup-backend/internal/service"
	"github.com/dafibh/evenup/evenup-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, burst int) *echo.Echo {
	t.Helper()

	repo := memory.NewGroupRepository(time.Hour)
	t.Cleanup(repo.Stop)
	rl := middleware.NewRateLimiterWithConfig(600, burst)
	t.Cleanup(rl.Stop)
	hub := websocket.NewHub()

	groupService := service.NewGroupService(repo)
	expenseService := service.NewExpenseService(repo)
	settlementService := service.NewSettlementService(repo)
	groupService.SetEventPublisher(hub)
	expenseService.SetEventPublisher(hub)
	settlementService.SetEventPublisher(hub)

	e := echo.New()
	RegisterRoutes(e, rl,
		NewGroupHandler(groupService),
		NewExpenseHandler(expenseService),
		NewSettlementHandler(settlementService),
		NewWebSocketHandler(hub, groupService, nil),
	)
	return e
}

func serve(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_GroupLifecycle(t *testing.T) {
	e := newTestServer(t, 100)

	rec := serve(e, http.MethodPost, "/api/v1/groups", CreateGroupRequest{Name: "Cabin", Members: []string{"A", "B", "C"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var group GroupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &group))
	base := "/api/v1/groups/" + group.ID

	rec = serve(e, http.MethodPost, base+"/settle", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(e, http.MethodPost, base+"/expenses", CreateExpenseRequest{Payer: "A", SplitAll: true, Amount: "30"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(e, http.MethodGet, base+"/expenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var expenses []ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &expenses))
	require.Len(t, expenses, 1)

	rec = serve(e, http.MethodPost, base+"/settle", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result SettlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []TransferResponse{
		{From: "B", To: "A", Amount: "10.00"},
		{From: "C", To: "A", Amount: "10.00"},
	}, result.Transfers)

	rec = serve(e, http.MethodDelete, base+"/expenses/"+expenses[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodPut, base+"/members", ReplaceMembersRequest{Members: []string{"A", "B"}})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodPatch, base, RenameGroupRequest{Name: "Lake"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_StatelessCalculate(t *testing.T) {
	e := newTestServer(t, 100)

	rec := serve(e, http.MethodPost, "/api/v1/settlements/calculate", CalculateRequest{
		Participants: []string{"A", "B"},
		Payments:     []PaymentRequest{{Payer: "A", Beneficiaries: []string{"A", "B"}, Amount: "0.0000001"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result SettlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Settled)
	assert.Empty(t, result.Transfers)
}

func TestRoutes_RateLimited(t *testing.T) {
	e := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		rec := serve(e, http.MethodGet, "/api/v1/groups/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(e, http.MethodGet, "/api/v1/groups/not-a-uuid", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
