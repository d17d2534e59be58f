package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/retain-dental/retain/internal/logging"
)

type onboardStub struct {
	calls  int
	status int
}

func setupTestApp(t *testing.T, stub *onboardStub) *fiber.App {
	t.Helper()
	mr := miniredis.RunT(t)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/onboard", func(c *fiber.Ctx) error {
		stub.calls++
		return c.Status(stub.status).JSON(fiber.Map{"success": stub.status < 400, "call": stub.calls})
	})
	return app
}

func postOnboard(t *testing.T, app *fiber.App, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/onboard", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(payload)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	stub := &onboardStub{status: fiber.StatusOK}
	app := setupTestApp(t, stub)

	postOnboard(t, app, "")
	postOnboard(t, app, "")

	if stub.calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", stub.calls)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	stub := &onboardStub{status: fiber.StatusOK}
	app := setupTestApp(t, stub)

	status, payload := postOnboard(t, app, "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}

	cachedStatus, cachedPayload := postOnboard(t, app, "abc123")
	if cachedStatus != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, cachedStatus)
	}
	if cachedPayload != payload {
		t.Fatalf("expected cached payload %s got %s", payload, cachedPayload)
	}
	if stub.calls != 1 {
		t.Fatalf("expected handler to run once, ran %d", stub.calls)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(cachedPayload), &decoded); err != nil {
		t.Fatalf("cached payload invalid json: %v", err)
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	stub := &onboardStub{status: fiber.StatusBadGateway}
	app := setupTestApp(t, stub)

	if status, _ := postOnboard(t, app, "retry-me"); status != fiber.StatusBadGateway {
		t.Fatalf("expected %d got %d", fiber.StatusBadGateway, status)
	}

	stub.status = fiber.StatusOK
	if status, _ := postOnboard(t, app, "retry-me"); status != fiber.StatusOK {
		t.Fatalf("expected retry to reach handler and succeed, got %d", status)
	}
	if stub.calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", stub.calls)
	}
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	stub := &onboardStub{status: fiber.StatusOK}
	app := setupTestApp(t, stub)

	status, _ := postOnboard(t, app, strings.Repeat("k", maxIdempotencyKey+1))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
	if stub.calls != 0 {
		t.Fatalf("handler must not run, ran %d", stub.calls)
	}
}
