package internalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ServiceMessage = "message"
	ServiceLogin   = "login"

	tokenHeader = "X-Internal-Token"
)

var ErrUnknownService = errors.New("internalapi: unknown service")

// RequestError is returned when a service answers with a non-2xx status or an
// unsuccessful envelope.
type RequestError struct {
	Service string
	Method  string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("internalapi: %s.%s: %d %s", e.Service, e.Method, e.Status, e.Message)
}

// Client performs internal requests against the other platform services.
type Client struct {
	services   map[string]string
	token      string
	httpClient *http.Client
}

func NewClient(services map[string]string, token string, timeout time.Duration) *Client {
	urls := make(map[string]string, len(services))
	for name, baseURL := range services {
		urls[name] = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		services:   urls,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Request posts payload to {service}/internal/{method} and decodes the data
// member of the response envelope into out. out may be nil.
func (c *Client) Request(ctx context.Context, service, method string, payload, out interface{}) error {
	baseURL, ok := c.services[service]
	if !ok || baseURL == "" {
		return fmt.Errorf("%w: %s", ErrUnknownService, service)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s.%s payload: %w", service, method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/internal/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s.%s response: %w", service, method, err)
	}

	var env struct {
		envelope
		Data json.RawMessage `json:"data"`
	}
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if decodeErr == nil && env.Error != "" {
			msg = env.Error
		}
		return &RequestError{Service: service, Method: method, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decoding %s.%s response: %w", service, method, decodeErr)
	}
	if !env.Success {
		return &RequestError{Service: service, Method: method, Status: resp.StatusCode, Message: env.Error}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding %s.%s data: %w", service, method, err)
		}
	}
	return nil
}

// MessageClient fetches messages from the message service.
type MessageClient struct {
	client *Client
}

func NewMessageClient(client *Client) *MessageClient {
	return &MessageClient{client: client}
}

func (m *MessageClient) GetMessages(ctx context.Context, filter MessageFilter) ([]Message, error) {
	var messages []Message
	payload := getModelsPayload{ModelName: "Message", FilterData: filter}
	if err := m.client.Request(ctx, ServiceMessage, "get_models", payload, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

// UserClient looks users up in the login service.
type UserClient struct {
	client *Client
}

func NewUserClient(client *Client) *UserClient {
	return &UserClient{client: client}
}

func (u *UserClient) GetUser(ctx context.Context, userID int64) (*RemoteUser, error) {
	var user RemoteUser
	if err := u.client.Request(ctx, ServiceLogin, "get_user", getUserPayload{UserID: userID}, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		user.ID = userID
	}
	return &user, nil
}
