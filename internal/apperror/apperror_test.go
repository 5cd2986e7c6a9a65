package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

var errSentinel = NewNotFound("Thing not found")

func TestIs_SentinelThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load thing: %w", errSentinel)
	if !errors.Is(wrapped, errSentinel) {
		t.Fatalf("expected wrapped error to match sentinel")
	}
	if errors.Is(wrapped, NewNotFound("Other not found")) {
		t.Fatalf("different message must not match")
	}
	if KindOf(wrapped) != NotFound {
		t.Fatalf("expected NotFound kind, got %v", KindOf(wrapped))
	}
	if KindOf(errors.New("boom")) != Internal {
		t.Fatalf("plain errors should be Internal")
	}
}

func TestWrite_StatusAndBody(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"bad request", NewBadRequest("Quantity must be at least 1"), 400, "Quantity must be at least 1"},
		{"unauthorized", NewUnauthorized("Invalid email or password"), 401, "Invalid email or password"},
		{"forbidden", NewForbidden("Admin access required"), 403, "Admin access required"},
		{"not found", fmt.Errorf("wrapped: %w", errSentinel), 404, "Thing not found"},
		{"conflict", NewConflict("Email already registered"), 409, "Email already registered"},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), 405, "nope"},
		{"internal", errors.New("pq: connection refused"), 500, internalMessage},
		{"internal kind", Wrap(Internal, "db", errors.New("driver text")), 500, internalMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: Handler})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			res, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if res.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, res.StatusCode)
			}
			var body map[string]string
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["message"] != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, body["message"])
			}
			if body["error"] == "" {
				t.Fatalf("error field missing")
			}
		})
	}
}
