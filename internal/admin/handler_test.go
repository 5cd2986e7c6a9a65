package admin

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/order"
)

func makeAppWithAdminHandler(aHandler *Handler) *fiber.App {
	app := fiber.New()
	aHandler.RegisterProtectedRoutes(app.Group("/api"))
	return app
}

func adminRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	var out map[string]json.RawMessage
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func TestAdminRoutes(t *testing.T) {
	s := newStores()
	placed := s.placeOrder(t, 2, 2)
	app := makeAppWithAdminHandler(NewHandler(s.admin, zap.NewNop()))

	status, body := adminRequest(t, app, "GET", "/api/admin/dashboard", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for dashboard, got %d", status)
	}
	var stats Statistics
	if err := json.Unmarshal(body["statistics"], &stats); err != nil {
		t.Fatalf("decode statistics: %v", err)
	}
	if stats.TotalOrders != 1 || stats.TotalUsers != 2 {
		t.Fatalf("unexpected statistics %+v", stats)
	}

	statusPath := "/api/admin/orders/" + strconv.Itoa(placed.ID) + "/status"
	if status, _ := adminRequest(t, app, "PUT", statusPath, `{"status":"lost"}`); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", status)
	}
	if status, _ := adminRequest(t, app, "PUT", "/api/admin/orders/999/status", `{"status":"shipped"}`); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing order, got %d", status)
	}
	if status, _ := adminRequest(t, app, "PUT", "/api/admin/orders/999/status", `{"status":"lost"}`); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing order with unknown status, got %d", status)
	}
	status, body = adminRequest(t, app, "PUT", statusPath, `{"status":"shipped"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 for status update, got %d", status)
	}
	var updated order.Order
	if err := json.Unmarshal(body["order"], &updated); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if updated.Status != order.StatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}

	var count int
	status, body = adminRequest(t, app, "GET", "/api/admin/orders?status=shipped", "")
	_ = json.Unmarshal(body["count"], &count)
	if status != fiber.StatusOK || count != 1 {
		t.Fatalf("expected one shipped order, got status %d count %d", status, count)
	}
	status, body = adminRequest(t, app, "GET", "/api/admin/orders?status=pending", "")
	_ = json.Unmarshal(body["count"], &count)
	if status != fiber.StatusOK || count != 0 {
		t.Fatalf("expected no pending orders, got status %d count %d", status, count)
	}
	if status, _ := adminRequest(t, app, "GET", "/api/admin/orders?status=bogus", ""); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bogus filter, got %d", status)
	}

	status, body = adminRequest(t, app, "GET", "/api/admin/users", "")
	_ = json.Unmarshal(body["count"], &count)
	if status != fiber.StatusOK || count != 3 {
		t.Fatalf("expected 3 users, got status %d count %d", status, count)
	}
	if strings.Contains(string(body["users"]), "password") {
		t.Fatalf("password hash must not be exposed: %s", body["users"])
	}

	if status, _ := adminRequest(t, app, "PUT", "/api/admin/users/1/toggle", ""); status != fiber.StatusForbidden {
		t.Fatalf("expected 403 toggling an admin, got %d", status)
	}
	status, body = adminRequest(t, app, "PUT", "/api/admin/users/2/toggle", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 toggling a customer, got %d", status)
	}
	var msg string
	_ = json.Unmarshal(body["message"], &msg)
	if msg != "User status updated" {
		t.Fatalf("unexpected message %q", msg)
	}

	status, body = adminRequest(t, app, "GET", "/api/admin/payments", "")
	_ = json.Unmarshal(body["count"], &count)
	if status != fiber.StatusOK || count != 1 {
		t.Fatalf("expected 1 payment, got status %d count %d", status, count)
	}
}
