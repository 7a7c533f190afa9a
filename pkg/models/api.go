package models

// ErrorResponse is the generic JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WebhookAck acknowledges a verified billing event. It is returned for
// every verified delivery, processed or not.
type WebhookAck struct {
	Received bool `json:"received"`
}
