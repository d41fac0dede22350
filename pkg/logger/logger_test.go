package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(Init)
	return buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	var entry LogEntry
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed decoding log line %q: %v", line, err)
	}
	return entry
}

func TestLevels(t *testing.T) {
	t.Run("info entry carries action and details", func(t *testing.T) {
		buf := captureOutput(t)
		Info("friends_made", map[string]interface{}{"group_id": 7})

		entry := decodeEntry(t, buf)
		if entry.Level != LevelInfo {
			t.Errorf("expected level info, got %s", entry.Level)
		}
		if entry.Action != "friends_made" {
			t.Errorf("expected action friends_made, got %s", entry.Action)
		}
		if entry.Details["group_id"] != float64(7) {
			t.Errorf("expected group_id 7, got %v", entry.Details["group_id"])
		}
		if entry.Service != "social" {
			t.Errorf("expected service social, got %s", entry.Service)
		}
	})

	t.Run("error entry records error text and user", func(t *testing.T) {
		buf := captureOutput(t)
		ErrorWithUser("42", "group_delete_failed", errors.New("boom"), nil)

		entry := decodeEntry(t, buf)
		if entry.Level != LevelError {
			t.Errorf("expected level error, got %s", entry.Level)
		}
		if entry.Error != "boom" {
			t.Errorf("expected error boom, got %q", entry.Error)
		}
		if entry.UserID == nil || *entry.UserID != "42" {
			t.Errorf("expected user id 42, got %v", entry.UserID)
		}
	})

	t.Run("nil global logger is a no-op", func(t *testing.T) {
		globalLogger = nil
		t.Cleanup(Init)
		Warn("ignored", nil)
	})
}

func TestGetUserIDFromContext(t *testing.T) {
	app := fiber.New()
	app.Get("/int", func(c *fiber.Ctx) error {
		c.Locals(UserIDLocal, int64(15))
		id := GetUserIDFromContext(c)
		if id == nil {
			return c.SendString("nil")
		}
		return c.SendString(*id)
	})
	app.Get("/none", func(c *fiber.Ctx) error {
		if GetUserIDFromContext(c) != nil {
			return c.SendString("set")
		}
		return c.SendString("nil")
	})

	for path, want := range map[string]string{"/int": "15", "/none": "nil"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatalf("request %s failed: %v", path, err)
		}
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		resp.Body.Close()
		if buf.String() != want {
			t.Errorf("%s: expected %q, got %q", path, want, buf.String())
		}
	}
}

func TestRedactSensitiveFields(t *testing.T) {
	payload := map[string]interface{}{"token": "abc", "name": "crew"}
	redactSensitiveFields(payload)
	if payload["token"] != "[REDACTED]" {
		t.Errorf("expected token to be redacted, got %v", payload["token"])
	}
	if payload["name"] != "crew" {
		t.Errorf("expected name untouched, got %v", payload["name"])
	}
}
