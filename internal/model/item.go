package model

import "time"

// Item is a lost-or-found report. JSON names follow the records the
// frontend has always consumed.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	ImageURL    string    `json:"imageUrl"`
	Location    string    `json:"location"`
	SecretHash  string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Item statuses.
const (
	StatusLost  = "lost"
	StatusFound = "found"
)

// Statuses lists every valid item status in display order.
var Statuses = []string{StatusLost, StatusFound}

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	return s == StatusLost || s == StatusFound
}
