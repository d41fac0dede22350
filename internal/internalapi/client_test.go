package internalapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_Request(t *testing.T) {
	t.Run("posts payload with token and decodes data", func(t *testing.T) {
		server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/internal/ping" {
				t.Errorf("expected path /internal/ping, got %s", r.URL.Path)
			}
			if r.Header.Get("X-Internal-Token") != "secret" {
				t.Errorf("expected internal token header, got %q", r.Header.Get("X-Internal-Token"))
			}
			var payload map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"echo": payload["value"]},
			})
		})

		client := NewClient(map[string]string{"svc": server.URL + "/"}, "secret", time.Second)
		var out struct {
			Echo string `json:"echo"`
		}
		if err := client.Request(context.Background(), "svc", "ping", map[string]string{"value": "hi"}, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Echo != "hi" {
			t.Errorf("expected echo 'hi', got %q", out.Echo)
		}
	})

	t.Run("unknown service", func(t *testing.T) {
		client := NewClient(map[string]string{}, "", 0)
		err := client.Request(context.Background(), "nope", "get", nil, nil)
		if !errors.Is(err, ErrUnknownService) {
			t.Fatalf("expected ErrUnknownService, got %v", err)
		}
	})

	t.Run("non-2xx status becomes RequestError", func(t *testing.T) {
		server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusServiceUnavailable, map[string]interface{}{
				"success": false,
				"error":   "message store offline",
			})
		})

		client := NewClient(map[string]string{"message": server.URL}, "", time.Second)
		err := client.Request(context.Background(), "message", "get_models", nil, nil)

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("expected RequestError, got %v", err)
		}
		if reqErr.Status != http.StatusServiceUnavailable || reqErr.Message != "message store offline" {
			t.Errorf("unexpected error fields %+v", reqErr)
		}
		if reqErr.Service != "message" || reqErr.Method != "get_models" {
			t.Errorf("unexpected service/method %s.%s", reqErr.Service, reqErr.Method)
		}
	})

	t.Run("unsuccessful envelope becomes RequestError", func(t *testing.T) {
		server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": false, "error": "denied"})
		})

		client := NewClient(map[string]string{"login": server.URL}, "", time.Second)
		err := client.Request(context.Background(), "login", "get_user", nil, nil)

		var reqErr *RequestError
		if !errors.As(err, &reqErr) || reqErr.Message != "denied" {
			t.Fatalf("expected denied RequestError, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true})
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(map[string]string{"svc": server.URL}, "", time.Second)
		if err := client.Request(ctx, "svc", "ping", nil, nil); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRequestError_Error(t *testing.T) {
	err := &RequestError{Service: "login", Method: "get_user", Status: 404, Message: "no such user"}
	if err.Error() != "internalapi: login.get_user: 404 no such user" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestMessageClient_GetMessages(t *testing.T) {
	var received map[string]interface{}
	server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/get_models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    []map[string]interface{}{{"id": 1, "text": "hello"}},
		})
	})

	client := NewMessageClient(NewClient(map[string]string{ServiceMessage: server.URL}, "", time.Second))
	sender := int64(10)
	messages, err := client.GetMessages(context.Background(), MessageFilter{GroupID: 4, Active: false, SenderID: &sender})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 1 || messages[0]["text"] != "hello" {
		t.Fatalf("unexpected messages %v", messages)
	}

	if received["model_name"] != "Message" {
		t.Errorf("expected model_name Message, got %v", received["model_name"])
	}
	filter, ok := received["filter_data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected filter_data object, got %T", received["filter_data"])
	}
	if filter["active"] != false || filter["sender_id"] != float64(10) || filter["group_id"] != float64(4) {
		t.Errorf("unexpected filter_data %v", filter)
	}
}

func TestMessageClient_EmptyData(t *testing.T) {
	server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true, "data": nil})
	})

	client := NewMessageClient(NewClient(map[string]string{ServiceMessage: server.URL}, "", time.Second))
	messages, err := client.GetMessages(context.Background(), MessageFilter{GroupID: 1, Active: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", messages)
	}
}

func TestUserClient_GetUser(t *testing.T) {
	server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/get_user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["user_id"] != float64(20) {
			t.Errorf("expected user_id 20, got %v", payload["user_id"])
		}
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"username": "ann", "email": "ann@example.com"},
		})
	})

	client := NewUserClient(NewClient(map[string]string{ServiceLogin: server.URL}, "", time.Second))
	user, err := client.GetUser(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 20 || user.Username != "ann" || user.Email != "ann@example.com" {
		t.Errorf("unexpected user %+v", user)
	}
}
