package model

import "time"

// BatchRecord is one completed dispatch batch in a user's history.
// Only the aggregate outcome is kept; per-recipient results are not
// persisted.
type BatchRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Subject    string    `json:"subject"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	CreatedAt  time.Time `json:"created_at"`
}
