package model

// StreakDay is one row of a pair's streak history.
type StreakDay struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Streak int    `json:"streak"`
}

// StreakRecord tracks consecutive-day pairing streaks for one unordered
// pair. StarsAwarded is monotonic so a cadence payout never double-fires.
type StreakRecord struct {
	PairKey       string      `json:"pairKey"`
	CurrentStreak int         `json:"currentStreak"`
	BestStreak    int         `json:"bestStreak"`
	LastDate      string      `json:"lastDate"`
	History       []StreakDay `json:"history"`
	StarsAwarded  int         `json:"starsAwarded"`
}
