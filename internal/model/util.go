package model

import (
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

const DayFormat = "2006-01-02"

func CreateID() string {
	uuid, _ := uuid.NewRandom()
	return base58.Encode(uuid[:])
}

// Day buckets a timestamp into the server-local calendar day used by
// streaks and encounter records.
func Day(t time.Time) string {
	return t.Local().Format(DayFormat)
}
