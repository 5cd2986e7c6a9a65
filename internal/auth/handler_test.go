package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/user"
)

const testSecret = "test-secret"

func makeAuthApp(t *testing.T, limiter *RateLimiter) (*fiber.App, *user.Service) {
	t.Helper()
	users := user.NewService(user.NewInMemoryRepository(nil))
	handler := NewHandler(users, NewTokenIssuer(testSecret, time.Hour), limiter, zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: apperror.Handler})
	handler.RegisterPublicRoutes(app)
	api := app.Group("/api", Middleware(testSecret), RequireUser(users))
	handler.RegisterProtectedRoutes(api)
	return app, users
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	out := map[string]any{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("decode %s: %v", string(b), err)
		}
	}
	return res.StatusCode, out
}

func TestRegisterLoginProfile(t *testing.T) {
	app, _ := makeAuthApp(t, nil)

	status, body := doJSON(t, app, "POST", "/api/auth/register", `{"email":"a@b.com","password":"pw","first_name":"A","last_name":"B"}`, "")
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, body)
	}
	u := body["user"].(map[string]any)
	if u["role"] != "user" {
		t.Fatalf("expected role user, got %v", u["role"])
	}
	if _, leaked := u["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}

	status, _ = doJSON(t, app, "POST", "/api/auth/register", `{"email":"a@b.com","password":"pw","first_name":"A","last_name":"B"}`, "")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}

	status, body = doJSON(t, app, "POST", "/api/auth/login", `{"email":"a@b.com","password":"pw"}`, "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on login, got %d", status)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("expected access token in login response")
	}

	status, body = doJSON(t, app, "GET", "/api/auth/profile", "", token)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on profile, got %d", status)
	}
	if body["user"].(map[string]any)["email"] != "a@b.com" {
		t.Fatalf("unexpected profile %v", body)
	}

	status, body = doJSON(t, app, "PUT", "/api/auth/profile", `{"first_name":"Alice"}`, token)
	if status != fiber.StatusOK || body["user"].(map[string]any)["first_name"] != "Alice" {
		t.Fatalf("profile update failed: %d %v", status, body)
	}
}

func TestRegister_MissingField(t *testing.T) {
	app, _ := makeAuthApp(t, nil)

	status, body := doJSON(t, app, "POST", "/api/auth/register", `{"email":"a@b.com","password":"pw","first_name":"A"}`, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["message"] != "Missing required field: last_name" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestLogin_Failures(t *testing.T) {
	app, users := makeAuthApp(t, nil)
	created, err := users.Register(context.Background(), user.RegisterInput{Email: "a@b.com", Password: "pw", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if status, _ := doJSON(t, app, "POST", "/api/auth/login", `{"email":"a@b.com"}`, ""); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without password, got %d", status)
	}
	if status, _ := doJSON(t, app, "POST", "/api/auth/login", `{"email":"a@b.com","password":"nope"}`, ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}

	if _, err := users.ToggleActive(context.Background(), created.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if status, _ := doJSON(t, app, "POST", "/api/auth/login", `{"email":"a@b.com","password":"pw"}`, ""); status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for inactive account, got %d", status)
	}
}

func TestProtectedRoutes_RejectBadTokens(t *testing.T) {
	app, users := makeAuthApp(t, nil)

	if status, _ := doJSON(t, app, "GET", "/api/auth/profile", "", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if status, _ := doJSON(t, app, "GET", "/api/auth/profile", "", "not-a-jwt"); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", status)
	}

	created, err := users.Register(context.Background(), user.RegisterInput{Email: "a@b.com", Password: "pw", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	expired := NewTokenIssuer(testSecret, -time.Minute)
	token, err := expired.Issue(created)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if status, _ := doJSON(t, app, "GET", "/api/auth/profile", "", token); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", status)
	}

	forged, err := NewTokenIssuer("other-secret", time.Hour).Issue(created)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if status, _ := doJSON(t, app, "GET", "/api/auth/profile", "", forged); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signature, got %d", status)
	}

	valid, _ := NewTokenIssuer(testSecret, time.Hour).Issue(created)
	if _, err := users.ToggleActive(context.Background(), created.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if status, _ := doJSON(t, app, "GET", "/api/auth/profile", "", valid); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated user, got %d", status)
	}
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	app, _ := makeAuthApp(t, NewRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		if status, _ := doJSON(t, app, "POST", "/api/auth/login", `{}`, ""); status != fiber.StatusBadRequest {
			t.Fatalf("request %d: expected 400, got %d", i, status)
		}
	}
	if status, _ := doJSON(t, app, "POST", "/api/auth/login", `{}`, ""); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", status)
	}
}
