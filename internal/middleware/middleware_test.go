package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/anthill-gaming/social/pkg/logger"
	"github.com/anthill-gaming/social/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

func setupMiddlewareTest(t *testing.T) {
	t.Helper()
	logger.Init()
	utils.ConfigureJWT("middleware-test-secret", 24)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed decoding body: %v body=%q", err, string(raw))
	}
	return body
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth, func(c *fiber.Ctx) error {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return utils.Success(c, fiber.StatusOK, fiber.Map{"userID": userID})
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	setupMiddlewareTest(t)
	app := newAuthApp()

	token, err := utils.GenerateToken(77)
	if err != nil {
		t.Fatalf("failed generating token: %v", err)
	}

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "missing header", header: "", wantStatus: fiber.StatusUnauthorized, wantError: "missing authorization header"},
		{name: "wrong scheme", header: "Token " + token, wantStatus: fiber.StatusUnauthorized, wantError: "invalid authorization format"},
		{name: "empty bearer", header: "Bearer ", wantStatus: fiber.StatusUnauthorized, wantError: "invalid authorization format"},
		{name: "garbage token", header: "Bearer nope", wantStatus: fiber.StatusUnauthorized, wantError: "invalid or expired token"},
		{name: "valid token", header: "Bearer " + token, wantStatus: fiber.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			body := decodeBody(t, resp)
			if tc.wantError != "" && body["error"] != tc.wantError {
				t.Errorf("expected error %q, got %v", tc.wantError, body["error"])
			}
			if tc.wantError == "" {
				data := body["data"].(map[string]any)
				if data["userID"] != float64(77) {
					t.Errorf("expected userID 77, got %v", data["userID"])
				}
			}
		})
	}
}

func TestGetCurrentUserIDWithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, ok := GetCurrentUserID(c)
		return c.SendString(strconv.FormatBool(ok))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != "false" {
		t.Errorf("expected false, got %s", raw)
	}
}

func TestRequestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	t.Cleanup(logger.Init)
	utils.ConfigureJWT("middleware-test-secret", 24)

	token, _ := utils.GenerateToken(5)

	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/ok", RequireAuth, func(c *fiber.Ctx) error {
		if GetRequestID(c) == "" {
			t.Error("expected request id in locals")
		}
		return utils.Success(c, fiber.StatusOK, nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var entry logger.LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("failed decoding log line %q: %v", buf.String(), err)
	}
	if entry.Action != "http_request" {
		t.Errorf("expected http_request action, got %s", entry.Action)
	}
	if entry.UserID == nil || *entry.UserID != "5" {
		t.Errorf("expected user id 5, got %v", entry.UserID)
	}
	if entry.Details["status_code"] != float64(200) {
		t.Errorf("expected status_code 200, got %v", entry.Details["status_code"])
	}
}

func TestSecurityLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	t.Cleanup(logger.Init)

	app := fiber.New()
	app.Use(SecurityLogger())
	app.Get("/denied", func(c *fiber.Ctx) error {
		c.Locals(logger.UserIDLocal, int64(9))
		return utils.Error(c, fiber.StatusForbidden, "group access denied")
	})
	app.Get("/fine", func(c *fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, nil)
	})

	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/fine", nil), -1); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no security log for 200, got %q", buf.String())
	}

	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/denied", nil), -1); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var entry logger.LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("failed decoding log line %q: %v", buf.String(), err)
	}
	if entry.Action != "access_denied" || entry.Level != logger.LevelWarn {
		t.Errorf("unexpected entry %+v", entry)
	}
}
