package internalapi

// Message is a record owned by the message service. Its shape is opaque here.
type Message map[string]interface{}

// MessageFilter is the filter_data sent to the message service's get_models method.
type MessageFilter struct {
	GroupID  uint   `json:"group_id"`
	Active   bool   `json:"active"`
	SenderID *int64 `json:"sender_id,omitempty"`
}

// RemoteUser describes a user owned by the login service.
type RemoteUser struct {
	ID       int64                  `json:"id"`
	Username string                 `json:"username"`
	Email    string                 `json:"email,omitempty"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

type getModelsPayload struct {
	ModelName  string        `json:"model_name"`
	FilterData MessageFilter `json:"filter_data"`
}

type getUserPayload struct {
	UserID int64 `json:"user_id"`
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
