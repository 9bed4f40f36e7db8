package model

import "time"

// StarDonation is the durable record of one donated star.
type StarDonation struct {
	ID        string    `json:"id"`
	From      UserID    `json:"from"`
	To        UserID    `json:"to"`
	CreatedAt time.Time `json:"createdAt"`
}
