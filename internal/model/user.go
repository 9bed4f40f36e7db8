package model

import "time"

type UserID string // local user id

type UserStatus int

const (
	UserStatusActive UserStatus = iota
	UserStatusGuest
	UserStatusLocked
	UserStatusDeleted
)

type CreateUserParams struct {
	Handle    string `json:"handle"`
	RealName  string `json:"realName"`
	PhotoURL  string `json:"photoUrl"`
	Birthdate string `json:"birthdate"` // YYYY-MM-DD, optional
	Password  string `json:"password"`
}

// PointEntry is one row of a user's point log. Score is always derived
// from these entries at read time, never stored.
type PointEntry struct {
	Value     int       `json:"value"`
	Kind      PairKind  `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Star is a unit of the displayed star collection. SourceUserID is empty
// for earned stars and names the donor for donated ones.
type Star struct {
	ID           string    `json:"id"`
	SourceUserID UserID    `json:"sourceUserId,omitempty"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}

const (
	StarReasonStreak    = "streak"
	StarReasonMilestone = "milestone"
	StarReasonDonation  = "donation"
)

// RevealEntry caches the identity fields another user exposed at the
// moment they revealed.
type RevealEntry struct {
	RevealedAt time.Time `json:"revealedAt"`
	RealName   string    `json:"realName"`
	PhotoURL   string    `json:"photoUrl"`
}

// User is the engine's view of an account. Handlers never serialize it
// directly; real-identity fields only leave through a reveal.
type User struct {
	ID        UserID     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Status    UserStatus `json:"status"`
	Handle    string     `json:"handle"`
	Password  string     `json:"password"` // bcrypt hash

	// real-identity fields, only served through a reveal
	RealName  string `json:"realName"`
	PhotoURL  string `json:"photoUrl"`
	Birthdate string `json:"birthdate"`

	// TapCode is the durable code behind this user's NFC tag / QR link.
	TapCode string `json:"tapCode"`

	PointLog    []PointEntry `json:"pointLog"`
	Stars       []Star       `json:"stars"`
	StarsEarned int          `json:"starsEarned"`
	Donated     int          `json:"donated"`

	Encounters []EncounterRecord `json:"encounters"`
	// encounter count per counterpart; rebuilt from Encounters on load
	Met map[UserID]int `json:"-"`
	// distinct counterparts ever paired with
	Touchers          int `json:"touchers"`
	MilestonesAwarded int `json:"milestonesAwarded"`

	CanSee     map[UserID]RevealEntry `json:"canSee"`
	RevealedTo map[UserID]time.Time   `json:"revealedTo"`
}

// HasRealIdentity is the gate for revealing.
func (u *User) HasRealIdentity() bool {
	return u.RealName != "" || u.PhotoURL != ""
}

func (u *User) RebuildMet() {
	u.Met = make(map[UserID]int, len(u.Encounters))
	for _, e := range u.Encounters {
		u.Met[e.CounterpartID]++
	}
	u.Touchers = len(u.Met)
}
