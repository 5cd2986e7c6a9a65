package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	l, err := New(Config{Level: "warn", Environment: "production", ServiceName: "orders-api"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zap.ErrorLevel) {
		t.Fatalf("error should be enabled at warn level")
	}

	dev, err := New(Config{Level: "unknown", Environment: "development"})
	if err != nil {
		t.Fatalf("new dev logger: %v", err)
	}
	if !dev.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("unknown level should fall back to info")
	}
}

func TestMiddleware_LogsRequestWithID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(Middleware(base))
	app.Get("/ping", func(c *fiber.Ctx) error {
		if FromCtx(c, nil) == base {
			t.Errorf("expected request-scoped logger, got base logger")
		}
		return c.SendStatus(fiber.StatusTeapot)
	})

	res, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusTeapot {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}

	entries := logs.FilterMessage("HTTP request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/ping" {
		t.Fatalf("unexpected path field %v", fields["path"])
	}
	if fields["status"] != int64(fiber.StatusTeapot) {
		t.Fatalf("unexpected status field %v", fields["status"])
	}
	if id, _ := fields["request_id"].(string); id == "" {
		t.Fatalf("request id missing from log entry")
	}
}

func TestFromCtx_Fallback(t *testing.T) {
	app := fiber.New()
	fallback := zap.NewNop()
	app.Get("/", func(c *fiber.Ctx) error {
		if FromCtx(c, fallback) != fallback {
			t.Errorf("expected fallback logger")
		}
		return nil
	})
	if _, err := app.Test(httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Fatalf("request failed: %v", err)
	}
}
