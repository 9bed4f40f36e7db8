package ledger

import (
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
)

// Sweep expires relations and prunes fully-decayed point entries,
// under the same per-key locks as request handling.
func (s *Service) Sweep(now time.Time) {
	s.sweepRelations(now)
	s.sweepPoints(now)
}

func (s *Service) sweepRelations(now time.Time) {
	s.mu.RLock()
	pairKeys := make([]string, 0, len(s.relations))
	for pairKey := range s.relations {
		pairKeys = append(pairKeys, pairKey)
	}
	s.mu.RUnlock()

	swept := 0
	for _, pairKey := range pairKeys {
		unlock := s.locks.acquire(pairKey)
		s.mu.Lock()
		if relation, ok := s.relations[pairKey]; ok && relation.Expired(now) {
			delete(s.relations, pairKey)
			s.store.Delete(ledgerstore.KindRelation, string(relation.ID))
			swept++
		}
		s.mu.Unlock()
		unlock()
	}
	if swept > 0 {
		log.Infof("swept %d expired relations", swept)
	}
}

func (s *Service) sweepPoints(now time.Time) {
	s.mu.RLock()
	userIDs := make([]model.UserID, 0, len(s.users))
	for userID := range s.users {
		userIDs = append(userIDs, userID)
	}
	s.mu.RUnlock()

	for _, userID := range userIDs {
		unlock := s.locks.acquire(string(userID))
		s.mu.RLock()
		user, ok := s.users[userID]
		s.mu.RUnlock()
		if ok && prunePoints(user, now) {
			s.store.Put(ledgerstore.KindUser, string(user.ID), user)
		}
		unlock()
	}
}
