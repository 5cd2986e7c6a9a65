package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/orders/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/orders/:id", "200"))
	for _, id := range []string{"1", "2"} {
		res, err := app.Test(httptest.NewRequest("GET", "/api/orders/"+id, nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if res.StatusCode != fiber.StatusOK {
			t.Fatalf("unexpected status %d", res.StatusCode)
		}
	}
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/orders/:id", "200"))
	if after-before != 2 {
		t.Fatalf("expected 2 recorded requests, got %v", after-before)
	}
}

func TestRecordOrderOperation(t *testing.T) {
	before := testutil.ToFloat64(OrderOperationsTotal.WithLabelValues("checkout", "failure"))
	RecordOrderOperation("checkout", false)
	if got := testutil.ToFloat64(OrderOperationsTotal.WithLabelValues("checkout", "failure")); got-before != 1 {
		t.Fatalf("expected failure counter to grow by 1, got %v", got-before)
	}
}

func TestHandler_ExposesRegistry(t *testing.T) {
	RecordAuthAttempt("success")

	app := fiber.New()
	app.Get("/metrics", Handler())
	res, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "orders_api_auth_attempts_total") {
		t.Fatalf("metrics output missing auth counter")
	}
}

func TestHandler_ScrapeAfterMixedMethods(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/metrics", Handler())
	app.Get("/api/cart", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Post("/api/cart/items", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	app.Put("/api/cart/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusUnauthorized) })
	app.Delete("/api/cart/items/:id", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	requests := []struct{ method, path string }{
		{"GET", "/api/cart"},
		{"POST", "/api/cart/items"},
		{"PUT", "/api/cart/items/1"},
		{"DELETE", "/api/cart/items/1"},
		{"PATCH", "/nowhere"},
	}
	for round := 0; round < 3; round++ {
		for _, r := range requests {
			if _, err := app.Test(httptest.NewRequest(r.method, r.path, nil)); err != nil {
				t.Fatalf("%s %s failed: %v", r.method, r.path, err)
			}
		}
	}

	res, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	for _, want := range []string{
		`method="DELETE",path="/api/cart/items/:id",status="404"`,
		`method="PUT",path="/api/cart/items/:id",status="401"`,
		`method="POST",path="/api/cart/items",status="201"`,
	} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("DELETE", "/api/cart/items/:id", "404")); got < 3 {
		t.Fatalf("expected at least 3 DELETE requests recorded, got %v", got)
	}
}
