package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatfuse/internal/entities"
	"chatfuse/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newGateway(users *fakeUserStore, conns *fakeConnStore, provider *fakeProvider) *gin.Engine {
	auth := usecases.NewAuthUsecase(users, testSecret)
	lifecycle := usecases.NewLifecycleUsecase(conns, provider)
	middleware := NewMiddleware(testSecret)

	r := gin.New()
	SetupGatewayRoutes(r, auth, lifecycle, conns, middleware, false)
	return r
}

func signToken(t *testing.T, userID int, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestRegisterValidation(t *testing.T) {
	r := newGateway(newFakeUserStore(), newFakeConnStore(), &fakeProvider{})

	w := doJSON(r, http.MethodPost, "/register", "", map[string]string{"email": "ana@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password: code = %d", w.Code)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	users := newFakeUserStore()
	r := newGateway(users, newFakeConnStore(), &fakeProvider{})

	w := doJSON(r, http.MethodPost, "/register", "", map[string]string{
		"email": "ana@example.com", "password": "secret123", "phone": "+34600111222",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: code = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["token"] == "" || body["token"] == nil {
		t.Error("expected a token on registration")
	}

	w = doJSON(r, http.MethodPost, "/register", "", map[string]string{
		"email": "ana@example.com", "password": "other456",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: code = %d", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "El email ya está registrado" {
		t.Errorf("message = %v", msg)
	}

	w = doJSON(r, http.MethodPost, "/register", "", map[string]string{
		"email": "otra@example.com", "password": "other456", "phone": "+34600111222",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate phone: code = %d", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "El teléfono ya está registrado" {
		t.Errorf("message = %v", msg)
	}
}

func TestLoginStatusCodes(t *testing.T) {
	users := newFakeUserStore()
	r := newGateway(users, newFakeConnStore(), &fakeProvider{})

	doJSON(r, http.MethodPost, "/register", "", map[string]string{
		"email": "ana@example.com", "password": "secret123",
	})

	w := doJSON(r, http.MethodPost, "/login", "", map[string]string{"email": "ana@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password: code = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/login", "", map[string]string{
		"email": "nadie@example.com", "password": "secret123",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user: code = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("wrong password: code = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/login", "", map[string]string{
		"email": "ana@example.com", "password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: code = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	user := body["user"].(map[string]any)
	if user["email"] != "ana@example.com" {
		t.Errorf("user = %v", user)
	}
}

func TestConnectionOwnership(t *testing.T) {
	conns := newFakeConnStore(&entities.Connection{ID: "conn-1", UserID: 1, Name: "soporte", Type: "whatsapp", Status: "offline"})
	r := newGateway(newFakeUserStore(), conns, &fakeProvider{
		instance: &entities.Instance{ConnectionStatus: "open", OwnerJid: "34600111222@s.whatsapp.net"},
	})

	// No token at all
	w := doJSON(r, http.MethodGet, "/connection?id=conn-1", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: code = %d", w.Code)
	}

	// Wrong owner
	w = doJSON(r, http.MethodGet, "/connection?id=conn-1", signToken(t, 2, "otro@example.com"), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("wrong owner: code = %d", w.Code)
	}

	// Owner gets the enriched view
	w = doJSON(r, http.MethodGet, "/connection?id=conn-1", signToken(t, 1, "ana@example.com"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner: code = %d, body %s", w.Code, w.Body.String())
	}
	conn := decodeBody(t, w)["connection"].(map[string]any)
	if conn["qrStatus"] != "open" || conn["phoneNumber"] != "34600111222" {
		t.Errorf("enrichment missing: %v", conn)
	}
	if _, ok := conn["qrCode"]; !ok {
		t.Error("qrCode key must be present (null)")
	}
}

func TestEditConnectionEmptySetNoWrite(t *testing.T) {
	conns := newFakeConnStore(&entities.Connection{ID: "conn-1", UserID: 1, Name: "soporte", Type: "whatsapp"})
	r := newGateway(newFakeUserStore(), conns, &fakeProvider{})
	token := signToken(t, 1, "ana@example.com")

	w := doJSON(r, http.MethodPost, "/editConnection?id=conn-1", token, map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty set: code = %d", w.Code)
	}
	if conns.updateCount() != 0 {
		t.Errorf("empty set must not write, got %d updates", conns.updateCount())
	}

	// Unknown keys only is still an empty update set
	w = doJSON(r, http.MethodPost, "/editConnection?id=conn-1", token, map[string]any{"plan": "9"})
	if w.Code != http.StatusBadRequest || conns.updateCount() != 0 {
		t.Errorf("unknown fields: code = %d, updates = %d", w.Code, conns.updateCount())
	}
}

func TestEditConnectionEnumValidation(t *testing.T) {
	conns := newFakeConnStore(&entities.Connection{ID: "conn-1", UserID: 1, Name: "soporte", Type: "whatsapp"})
	r := newGateway(newFakeUserStore(), conns, &fakeProvider{})
	token := signToken(t, 1, "ana@example.com")

	w := doJSON(r, http.MethodPost, "/editConnection?id=conn-1", token, map[string]any{"status": "zombie"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status: code = %d", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "Estado inválido. Valores permitidos: connected, pause, offline" {
		t.Errorf("message = %v", msg)
	}

	w = doJSON(r, http.MethodPost, "/editConnection?id=conn-1", token, map[string]any{"status": "pause", "webhook": "https://hooks.example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("valid edit: code = %d, body %s", w.Code, w.Body.String())
	}
	if conns.updateCount() != 1 {
		t.Errorf("updates = %d", conns.updateCount())
	}
}

func TestCreateConnectionInvalidType(t *testing.T) {
	r := newGateway(newFakeUserStore(), newFakeConnStore(), &fakeProvider{})
	token := signToken(t, 1, "ana@example.com")

	w := doJSON(r, http.MethodPost, "/createConnection", token, map[string]string{"name": "x", "type": "sms"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid type: code = %d", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/createConnection", token, map[string]string{"name": "soporte", "type": "whatsapp"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: code = %d, body %s", w.Code, w.Body.String())
	}
	conn := decodeBody(t, w)["connection"].(map[string]any)
	if conn["status"] != "offline" || conn["qrPrivacy"] != "private" {
		t.Errorf("defaults: %v", conn)
	}
}

func TestGetQRStateMachine(t *testing.T) {
	conns := newFakeConnStore(&entities.Connection{ID: "conn-1", UserID: 1, Status: "offline"})
	provider := &fakeProvider{
		instance: &entities.Instance{ConnectionStatus: "close"},
		qrCode:   "2@abcdef",
	}
	r := newGateway(newFakeUserStore(), conns, provider)

	w := doJSON(r, http.MethodGet, "/getQr", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing id: code = %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/getQr?id=conn-1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("close: code = %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "close" {
		t.Errorf("body = %v", body)
	}

	w = doJSON(r, http.MethodGet, "/getQr?id=conn-1&connect=true", "", nil)
	if body := decodeBody(t, w); body["status"] != "waiting" || body["qr"] != "2@abcdef" {
		t.Errorf("waiting body = %v", body)
	}

	provider.instance.ConnectionStatus = "open"
	w = doJSON(r, http.MethodGet, "/getQr?id=conn-1", "", nil)
	if body := decodeBody(t, w); body["status"] != "ready" {
		t.Errorf("ready body = %v", body)
	}
	conn, _ := conns.GetByID(nil, "conn-1")
	if conn.Status != entities.StatusConnected {
		t.Errorf("status not synced, got %q", conn.Status)
	}

	provider.fetchErr = entities.ErrInstanceNotFound
	w = doJSON(r, http.MethodGet, "/getQr?id=conn-1", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("missing instance must still be 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "Interface no encontrada" {
		t.Errorf("body = %v", body)
	}
}

func TestPublicConnectionSkipsOwnerCheck(t *testing.T) {
	conns := newFakeConnStore(&entities.Connection{ID: "conn-1", UserID: 1, Name: "soporte", Type: "whatsapp", QRPrivacy: "public"})
	r := newGateway(newFakeUserStore(), conns, &fakeProvider{fetchErr: entities.ErrInstanceNotFound})

	w := doJSON(r, http.MethodGet, "/publicConnection?id=conn-1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", w.Code, w.Body.String())
	}
	conn := decodeBody(t, w)["connection"].(map[string]any)
	if conn["qrStatus"] != "close" {
		t.Errorf("qrStatus should default to close, got %v", conn["qrStatus"])
	}
}

func TestStopQROwnership(t *testing.T) {
	conns := newFakeConnStore(&entities.Connection{ID: "conn-1", UserID: 1})
	r := newGateway(newFakeUserStore(), conns, &fakeProvider{})

	w := doJSON(r, http.MethodGet, "/stopQr?id=conn-1", signToken(t, 2, "otro@example.com"), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("wrong owner: code = %d", w.Code)
	}
	if msg := decodeBody(t, w)["message"]; msg != "No tienes permiso para detener esta conexión" {
		t.Errorf("message = %v", msg)
	}

	w = doJSON(r, http.MethodGet, "/stopQr?id=desconocida", signToken(t, 1, "ana@example.com"), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown connection: code = %d", w.Code)
	}
}

func TestRESTDeleteRemovesRowOnly(t *testing.T) {
	conns := newFakeConnStore(&entities.Connection{ID: "conn-1", UserID: 1})
	r := newGateway(newFakeUserStore(), conns, &fakeProvider{})

	w := doJSON(r, http.MethodDelete, "/connections/conn-1", signToken(t, 2, "otro@example.com"), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("wrong owner: code = %d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, "/connections/conn-1", signToken(t, 1, "ana@example.com"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: code = %d", w.Code)
	}
	if conn, _ := conns.GetByID(nil, "conn-1"); conn != nil {
		t.Error("row should be gone")
	}
}
