package invader

import "time"

// Template is a saved message template from the remote catalog.
type Template struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Variables map[string]string `json:"variables,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Attachment is one file carried with every message of a batch.
type Attachment struct {
	Name string
	Data []byte
}

// SendResult is the delivery outcome for a single recipient.
type SendResult struct {
	Email     string     `json:"email"`
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// SendSummary reduces a batch to counts. Total is always the number of
// results; an empty batch yields the zero value.
type SendSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// SendResponse is the backend's answer to a completed batch request.
// Success reports whether every recipient succeeded; partial failure is
// still a completed batch.
type SendResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Trace   string       `json:"trace,omitempty"`
	Results []SendResult `json:"results"`
	Summary SendSummary  `json:"summary"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}
