package model

import "time"

// FoundReport records that someone found a lost item and can be reached by
// phone. ItemID is not checked against the items table.
type FoundReport struct {
	ID            int64     `json:"id"`
	ItemID        int64     `json:"itemId"`
	Phone         string    `json:"phone"`
	FoundImageURL string    `json:"foundImageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}
