package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/admin"
	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/correction"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-api/internal/infrastructure/xlsx"
	apphttp "github.com/jhoicas/stock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-api/pkg/jwt"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "stock-api-test"
	adminEmail    = "admin@acme.test"
	adminPassword = "secreto-123"
)

// buildTestApp arma la API completa sobre el store en memoria.
// buildTestApp monta la API completa sobre el store en memoria. Los middlewares extra se
// registran antes de las rutas.
func buildTestApp(t *testing.T, extra ...fiber.Handler) *fiber.App {
	t.Helper()
	log := logger.Nop()
	store := memory.NewStore()
	repos := store.Repos()
	sessions := memory.NewSessionCache()
	locker := memory.NewLocker()
	engine := inventory.NewStockEngine()
	lockTTL := 30 * time.Second

	authUC := auth.NewAuthUseCase(repos.Users, repos.Roles, sessions, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer,
	}, log)

	app := apphttp.NewApp("stock-api-test", log)
	for _, h := range extra {
		app.Use(h)
	}
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:            authUC,
		RoleUC:            auth.NewRoleUseCase(repos.Roles, repos.Users, repos.Audit, sessions, log),
		UserUC:            usecase.NewUserUseCase(repos.Users, repos.Roles, repos.Audit, sessions, log),
		CompanyUC:         usecase.NewCompanyUseCase(store, repos, log),
		LocationUC:        usecase.NewLocationUseCase(repos.Locations),
		ProductUC:         usecase.NewProductUseCase(repos.Products, repos.Units),
		BatchUC:           inventory.NewBatchUseCase(repos),
		LedgerUC:          inventory.NewLedgerUseCase(repos, xlsx.NewLedgerExporter()),
		ReconciliationUC:  inventory.NewReconciliationUseCase(repos, log),
		SellUC:            inventory.NewSellUseCase(store, repos, engine, log),
		TransferUC:        inventory.NewTransferUseCase(store, repos, engine, log),
		PurchaseUC:        inventory.NewPurchaseUseCase(store, repos, engine, log),
		StockCorrectionUC: correction.NewStockCorrectionUseCase(store, repos, engine, locker, lockTTL, pdf.NewMarotoCorrectionRenderer(), log),
		SellCorrectionUC:  correction.NewSellCorrectionUseCase(store, repos, engine, locker, lockTTL, log),
		ResetUC:           admin.NewResetUseCase(store, repos, authUC, locker, lockTTL, log),
		JWTSecret:         testJWTSecret,
	})
	return app
}

// call envía JSON y devuelve el status y el cuerpo decodificado (si es JSON).
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

// bootstrap crea la empresa y devuelve el token del administrador y el company_id.
func bootstrap(t *testing.T, app *fiber.App) (token, companyID string) {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/companies", "", map[string]any{
		"name": "Acme", "admin_email": adminEmail, "admin_password": adminPassword,
	})
	require.Equal(t, http.StatusCreated, status, body)
	companyID = body["company"].(map[string]any)["id"].(string)
	return login(t, app, adminEmail, adminPassword), companyID
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	status, body := call(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	status, body := call(t, app, http.MethodGet, "/api/auth/me", "no-es-un-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestAuthMiddleware_SecretIncorrecto_Retorna401(t *testing.T) {
	app := buildTestApp(t)
	tok, _, err := pkgjwt.Generate("otro-secret", "u1", "c1", "r1", testIssuer, 10)
	require.NoError(t, err)

	status, _ := call(t, app, http.MethodGet, "/api/auth/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthMiddleware_CargaSesionConPermisos(t *testing.T) {
	app := buildTestApp(t)
	token, _ := bootstrap(t, app)

	status, body := call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, adminEmail, body["user"].(map[string]any)["email"])
	assert.Contains(t, body["permissions"], entity.PermStockCorrectionApprove)
}

func TestLogout_RevocaElToken(t *testing.T) {
	app := buildTestApp(t)
	token, _ := bootstrap(t, app)

	status, _ := call(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body := call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestCompany_SoloLaPropia(t *testing.T) {
	app := buildTestApp(t)
	token, companyID := bootstrap(t, app)

	status, _ := call(t, app, http.MethodGet, "/api/companies/"+companyID, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := call(t, app, http.MethodGet, "/api/companies/otra", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

// Un usuario con solo LOCATION.VIEW lista ubicaciones pero no puede crearlas.
func TestRequirePermission_SoloLecturaBloqueaEscritura(t *testing.T) {
	app := buildTestApp(t)
	adminToken, _ := bootstrap(t, app)

	status, role := call(t, app, http.MethodPost, "/api/roles", adminToken, map[string]any{
		"name": "Consulta", "permissions": []string{entity.PermLocationView},
	})
	require.Equal(t, http.StatusCreated, status, role)

	status, body := call(t, app, http.MethodPost, "/api/auth/register", adminToken, map[string]any{
		"email": "lector@acme.test", "password": "lector-123", "role_id": role["id"],
	})
	require.Equal(t, http.StatusCreated, status, body)
	token := login(t, app, "lector@acme.test", "lector-123")

	status, _ = call(t, app, http.MethodGet, "/api/locations", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = call(t, app, http.MethodPost, "/api/locations", token, map[string]any{"type": "STORE", "name": "Bodega"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, _ = call(t, app, http.MethodGet, "/api/stock-corrections", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestValidacion_DetallePorCampo(t *testing.T) {
	app := buildTestApp(t)
	token, _ := bootstrap(t, app)

	status, body := call(t, app, http.MethodPost, "/api/locations", token, map[string]any{"type": "GARAGE"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, body)
	assert.Contains(t, details, "type")
	assert.Contains(t, details, "name")
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de corrección de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStockCorrection_FlujoHTTP(t *testing.T) {
	app := buildTestApp(t)
	token, _ := bootstrap(t, app)

	status, store := call(t, app, http.MethodPost, "/api/locations", token, map[string]any{"type": "STORE", "name": "Bodega"})
	require.Equal(t, http.StatusCreated, status, store)
	status, unit := call(t, app, http.MethodPost, "/api/units", token, map[string]any{"name": "Unidad", "factor": 1})
	require.Equal(t, http.StatusCreated, status, unit)
	status, product := call(t, app, http.MethodPost, "/api/products", token, map[string]any{"sku": "P-1", "name": "Producto"})
	require.Equal(t, http.StatusCreated, status, product)

	status, purchase := call(t, app, http.MethodPost, "/api/purchases", token, map[string]any{
		"store_id": store["id"],
		"items": []map[string]any{{
			"product_id": product["id"], "batch_number": "L1", "price": 2, "quantity": 10,
		}},
	})
	require.Equal(t, http.StatusCreated, status, purchase)
	batchID := purchase["items"].([]any)[0].(map[string]any)["batch_id"]

	item := map[string]any{"product_id": product["id"], "batch_id": batchID, "unit_of_measure_id": unit["id"]}

	// -15 sobre 10 disponibles: la aprobación falla sin tocar el stock.
	item["quantity"] = -15
	status, big := call(t, app, http.MethodPost, "/api/stock-corrections", token, map[string]any{
		"reason": "DAMAGED", "store_id": store["id"], "items": []any{item},
	})
	require.Equal(t, http.StatusCreated, status, big)
	status, body := call(t, app, http.MethodPost, "/api/stock-corrections/"+big["id"].(string)+"/approve", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])

	item["quantity"] = -4
	status, sc := call(t, app, http.MethodPost, "/api/stock-corrections", token, map[string]any{
		"reason": "EXPIRED", "store_id": store["id"], "items": []any{item},
	})
	require.Equal(t, http.StatusCreated, status, sc)
	id := sc["id"].(string)

	status, body = call(t, app, http.MethodPost, "/api/stock-corrections/"+id+"/approve", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, entity.CorrectionApproved, body["status"])

	status, body = call(t, app, http.MethodPost, "/api/stock-corrections/"+id+"/reject", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CORRECTION_FINALIZED", body["code"])

	status, body = call(t, app, http.MethodGet, "/api/reconciliation", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["consistent"])

	status, body = call(t, app, http.MethodGet, "/api/stock-ledger?batch_id="+batchID.(string), token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 2, body["total_count"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Contexto de la petición
// ──────────────────────────────────────────────────────────────────────────────

func TestHandlers_PropaganUserContext(t *testing.T) {
	app := buildTestApp(t, func(c *fiber.Ctx) error {
		if c.Get("X-Cancelar") != "" {
			ctx, cancel := context.WithCancel(c.UserContext())
			cancel()
			c.SetUserContext(ctx)
		}
		return c.Next()
	})
	payload := map[string]any{"name": "Acme", "admin_email": adminEmail, "admin_password": adminPassword}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/companies", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cancelar", "1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "la tx debe ver el contexto cancelado")

	status, body := call(t, app, http.MethodPost, "/api/companies", "", payload)
	assert.Equal(t, http.StatusCreated, status, body)
}
