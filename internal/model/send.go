package model

import "time"

// Attachment is one file to include with every message of a batch.
type Attachment struct {
	Name string
	Data []byte
}

// SendResult records the outcome of one delivery attempt. Results are
// kept in the order the recipients were attempted.
type SendResult struct {
	Email     string     `json:"email"`
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// SendSummary aggregates a result sequence. Total always equals
// Successful+Failed and is derived, never stored.
type SendSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
