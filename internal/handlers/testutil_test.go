package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anthill-gaming/social/internal/config"
	"github.com/anthill-gaming/social/internal/database"
	"github.com/anthill-gaming/social/internal/internalapi"
	"github.com/anthill-gaming/social/internal/middleware"
	"github.com/anthill-gaming/social/internal/services"
	"github.com/anthill-gaming/social/pkg/logger"
	"github.com/anthill-gaming/social/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	messages *fakeMessageService
	users    *fakeUserService
	audit    *services.AuditService
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithUniquePairs(t, false)
}

func setupTestEnvWithUniquePairs(t *testing.T, enforceUniquePairs bool) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := database.Connect(config.DBConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	messages := &fakeMessageService{}
	users := &fakeUserService{users: map[int64]*internalapi.RemoteUser{}}

	auditService := services.NewAuditService(db, nil, 100)
	friendService := services.NewFriendService(db, nil, enforceUniquePairs)
	groupService := services.NewGroupService(db, messages, users, nil)

	app := fiber.New()
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS("*"))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	Register(app,
		NewFriendsHandler(friendService, auditService),
		NewGroupsHandler(groupService, auditService),
		NewAuditHandler(auditService),
	)

	return &testEnv{app: app, db: db, messages: messages, users: users, audit: auditService}
}

type fakeMessageService struct {
	mu       sync.Mutex
	filters  []internalapi.MessageFilter
	messages []internalapi.Message
	err      error
}

func (f *fakeMessageService) GetMessages(_ context.Context, filter internalapi.MessageFilter) ([]internalapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func (f *fakeMessageService) lastFilter() internalapi.MessageFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters[len(f.filters)-1]
}

type fakeUserService struct {
	users map[int64]*internalapi.RemoteUser
}

func (f *fakeUserService) GetUser(_ context.Context, userID int64) (*internalapi.RemoteUser, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, errors.New("login service unreachable")
	}
	return user, nil
}

func tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := utils.GenerateToken(userID)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}
	return token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func userHeaders(t *testing.T, userID int64) map[string]string {
	t.Helper()
	return authHeaders(tokenFor(t, userID))
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

// createGroupViaAPI creates a group owned by userID and returns its id.
func createGroupViaAPI(t *testing.T, env *testEnv, userID int64, payload map[string]any) uint {
	t.Helper()
	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/groups", payload, userHeaders(t, userID))
	assertStatus(t, resp, fiber.StatusCreated)
	body := decodeJSONMap(t, resp)
	data := body["data"].(map[string]any)
	return uint(data["id"].(float64))
}

func groupPath(groupID uint, suffix string) string {
	return fmt.Sprintf("/api/groups/%d%s", groupID, suffix)
}
