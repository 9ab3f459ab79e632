package model

import "time"

// Template is a saved message template owned by a single user.
// Variables holds the default substitution values captured when the
// template was saved, keyed by placeholder name.
type Template struct {
	ID        string            `json:"id"`
	UserID    string            `json:"-"`
	Name      string            `json:"name"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Variables map[string]string `json:"variables"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
