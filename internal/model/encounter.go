package model

import "time"

type EncounterID string

// EncounterRecord is one pairing event from one participant's point of
// view; two are written per event. Append-only except the tip.
type EncounterRecord struct {
	ID            EncounterID `json:"id"`
	CounterpartID UserID      `json:"counterpartId"`
	Phrase        string      `json:"phrase"`
	Kind          PairKind    `json:"kind"`
	Timestamp     time.Time   `json:"timestamp"`
	Day           string      `json:"day"` // YYYY-MM-DD, server-local
	PointValue    int         `json:"pointValue"`
	TipAmount     int         `json:"tipAmount,omitempty"`
}
