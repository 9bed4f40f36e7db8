package ledger

import (
	"time"

	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
)

// at most one update per pair per calendar day; assumes the pair and
// both user key locks are held
func (s *Service) advanceStreak(pairKey string, userA, userB *model.User, now time.Time) *model.StreakRecord {
	today := model.Day(now)
	yesterday := model.Day(now.AddDate(0, 0, -1))

	s.mu.Lock()
	record, ok := s.streaks[pairKey]
	if !ok {
		record = &model.StreakRecord{PairKey: pairKey}
		s.streaks[pairKey] = record
	}
	s.mu.Unlock()

	if record.LastDate == today {
		return record
	}

	if record.LastDate == yesterday {
		record.CurrentStreak++
	} else {
		record.CurrentStreak = 1
	}
	record.LastDate = today
	if record.CurrentStreak > record.BestStreak {
		record.BestStreak = record.CurrentStreak
	}
	record.History = append(record.History, model.StreakDay{Date: today, Streak: record.CurrentStreak})

	thresholds := record.CurrentStreak / StreakCadence
	for record.StarsAwarded < thresholds {
		record.StarsAwarded++
		s.awardStar(userA, model.StarReasonStreak)
		s.awardStar(userB, model.StarReasonStreak)
	}

	s.store.Put(ledgerstore.KindStreak, pairKey, record)

	for _, userID := range []model.UserID{userA.ID, userB.ID} {
		s.emit(model.EventStreakAdvanced, userID, map[string]interface{}{
			"pairKey": pairKey,
			"streak":  record.CurrentStreak,
			"best":    record.BestStreak,
		})
	}
	return record
}

// StreakFor returns a copy of the pair's streak record.
func (s *Service) StreakFor(a, b model.UserID) *model.StreakRecord {
	pairKey := model.PairKey(a, b)
	unlock := s.locks.acquire(pairKey)
	defer unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.streaks[pairKey]; ok {
		clone := *record
		clone.History = append([]model.StreakDay(nil), record.History...)
		return &clone
	}
	return &model.StreakRecord{PairKey: pairKey}
}

// BestStreak returns a user's longest streak ever, across all pairs.
func (s *Service) BestStreak(userID model.UserID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := 0
	for pairKey, record := range s.streaks {
		a, b := model.SplitPairKey(pairKey)
		if a != userID && b != userID {
			continue
		}
		if record.BestStreak > best {
			best = record.BestStreak
		}
	}
	return best
}
