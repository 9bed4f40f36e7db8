package model

import (
	"strings"
	"time"
)

type RelationID string

// PairKind classifies how a pairing was confirmed.
type PairKind string

const (
	PairKindPhysical PairKind = "physical"
	PairKindDigital  PairKind = "digital"
	PairKindCheckin  PairKind = "checkin"
	PairKindService  PairKind = "service"
)

// Relation is a time-bounded, renewable pairing between exactly two
// users. At most one non-expired Relation exists per unordered pair.
type Relation struct {
	ID        RelationID        `json:"id"`
	UserA     UserID            `json:"userA"` // lexicographically smaller
	UserB     UserID            `json:"userB"`
	CreatedAt time.Time         `json:"createdAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Renewed   int               `json:"renewed"`
	Phrase    string            `json:"phrase"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (r *Relation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *Relation) Other(id UserID) UserID {
	if r.UserA == id {
		return r.UserB
	}
	return r.UserA
}

// PairKey is the canonical key for an unordered user pair.
func PairKey(a, b UserID) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + "|" + string(b)
}

// SplitPairKey is the inverse of PairKey.
func SplitPairKey(key string) (UserID, UserID) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return UserID(key), ""
	}
	return UserID(parts[0]), UserID(parts[1])
}
