package ledger

import (
	"math"
	"time"

	"uk.co.dudmesh.tether/internal/model"
)

// each entry fades linearly to zero over the decay window; rounded to
// one decimal place
func scoreAt(user *model.User, now time.Time) float64 {
	total := 0.0
	for _, entry := range user.PointLog {
		age := now.Sub(entry.Timestamp)
		if age < 0 {
			age = 0
		}
		remaining := 1 - float64(age)/float64(DecayWindow)
		if remaining <= 0 {
			continue
		}
		total += float64(entry.Value) * remaining
	}
	return math.Round(total*10) / 10
}

// Score returns a user's live affinity score.
func (s *Service) Score(userID model.UserID) (float64, error) {
	unlock := s.locks.acquire(string(userID))
	defer unlock()

	user, err := s.FetchUser(userID)
	if err != nil {
		return 0, err
	}
	return scoreAt(user, s.clock()), nil
}

// assumes the user's key lock is held
func prunePoints(user *model.User, now time.Time) bool {
	kept := user.PointLog[:0]
	for _, entry := range user.PointLog {
		if now.Sub(entry.Timestamp) < DecayWindow {
			kept = append(kept, entry)
		}
	}
	pruned := len(kept) != len(user.PointLog)
	user.PointLog = kept
	return pruned
}
