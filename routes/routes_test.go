package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joy095/cashfree/controllers/cashfree_api_controller"
	"github.com/joy095/cashfree/controllers/cashfree_settings_controller"
	"github.com/joy095/cashfree/controllers/payment_request_controller"
	"github.com/joy095/cashfree/handlers/gateway_handlers"
	"github.com/joy095/cashfree/handlers/payment_request_handlers"
	"github.com/joy095/cashfree/models/integration_models"
	"github.com/joy095/cashfree/utils/jwt_parse"
	"github.com/joy095/cashfree/utils/keystore"
)

var testAdminSecret = []byte("admin-secret")

func adminToken(t *testing.T, roles ...string) string {
	t.Helper()
	token, err := jwt_parse.IssueAdminToken(testAdminSecret, "admin@example.com", roles, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(r http.Handler, method, target, authorization, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type paidRequests struct{}

func (paidRequests) GetDoc(ctx context.Context, doctype, name string, out any) error {
	return json.Unmarshal([]byte(`{"name":"`+name+`","status":"Paid","payment_gateway":"Cashfree"}`), out)
}

type storedPayment struct{}

func (storedPayment) LatestCompleted(ctx context.Context, serviceName, doctype, docname string) (*integration_models.IntegrationLogEntry, error) {
	return &integration_models.IntegrationLogEntry{Data: `{"order_id":"CF-1","cf_payment_id":77}`}, nil
}

func TestHealthRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHealthRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSettingsRoutesRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := testAdminSecret
	r := gin.New()
	RegisterSettingsRoutes(r, cashfree_settings_controller.NewSettingsController(nil, ""), secret)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cashfree-settings/buttons", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt_parse.IssueAdminToken(secret, "admin@example.com", []string{jwt_parse.RoleSystemManager}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/cashfree-settings/buttons", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Create Payment Gateway Account")
}

func TestPaymentRequestRoutesRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	pc := payment_request_controller.NewPaymentRequestController(paidRequests{},
		payment_request_handlers.NewViewer(storedPayment{}), payment_request_handlers.NewLinkGenerator(nil))
	RegisterPaymentRequestRoutes(r, pc, testAdminSecret)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/payment-requests/PR-9/buttons"},
		{http.MethodPost, "/payment-requests/PR-9/payment-link"},
		{http.MethodGet, "/payment-requests/PR-9/cashfree-payment"},
	} {
		w := serve(r, route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.NotContains(t, w.Body.String(), "CF-1", route.path)
	}

	w := serve(r, http.MethodGet, "/payment-requests/PR-9/cashfree-payment", adminToken(t, "Accounts User"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodGet, "/payment-requests/PR-9/cashfree-payment", adminToken(t, jwt_parse.RoleSystemManager), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CF-1")
}

func TestPaymentLinkMethodRequiresAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	gw := gateway_handlers.NewGateway(nil, nil, nil, keystore.NewMemory(), nil, "https://erp.example", "")
	RegisterAPIRoutes(r, cashfree_api_controller.NewAPIController(gw), Limits{Webhook: "10-1m"}, testAdminSecret)

	body := `{"reference_doctype":"Payment Request","reference_docname":"PR-9"}`
	w := serve(r, http.MethodPost, "/api/method/cashfree.make_payment", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/method/cashfree.make_payment", adminToken(t, jwt_parse.RoleSystemManager), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cashfree.api.make_payment?")
}
