package ledger

import (
	"time"

	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
)

// PairingResult answers both participants after a confirmed pairing.
type PairingResult struct {
	Relation *model.Relation `json:"relation"`
	Renewed  bool            `json:"renewed"`
	Phrase   string          `json:"phrase"`
	PointsA  int             `json:"pointsA"`
	PointsB  int             `json:"pointsB"`
	StatsA   *UserStats      `json:"statsA"`
	StatsB   *UserStats      `json:"statsB"`
}

// ConfirmPairing is the single entry point every rendezvous mechanism
// funnels into. Runs under the pair's key lock, so concurrent duplicate
// signals can never create a second relation.
func (s *Service) ConfirmPairing(a, b model.UserID, kind model.PairKind, metadata map[string]string) (*PairingResult, error) {
	pairKey := model.PairKey(a, b)
	unlock := s.locks.acquire(pairKey, string(a), string(b))
	defer unlock()

	userA, userB, err := s.lookupPair(a, b)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	pairPhrase := s.phrases.Compatibility(userA.Birthdate, userB.Birthdate)
	relation, renewed := s.getOrRenewRelation(pairKey, a, b, kind, pairPhrase, metadata, now)

	pointsA := s.appendEncounter(userA, userB.ID, kind, pairPhrase, now)
	pointsB := s.appendEncounter(userB, userA.ID, kind, pairPhrase, now)
	s.advanceStreak(pairKey, userA, userB, now)
	s.checkMilestone(userA)
	s.checkMilestone(userB)

	s.store.Put(ledgerstore.KindRelation, string(relation.ID), relation)
	s.store.Put(ledgerstore.KindUser, string(userA.ID), userA)
	s.store.Put(ledgerstore.KindUser, string(userB.ID), userB)

	eventType := model.EventRelationCreated
	if renewed {
		eventType = model.EventRelationRenewed
	}
	for _, pair := range []struct {
		to          model.UserID
		counterpart *model.User
		points      int
	}{
		{a, userB, pointsA},
		{b, userA, pointsB},
	} {
		s.emit(eventType, pair.to, map[string]interface{}{
			"relationId":  relation.ID,
			"counterpart": pair.counterpart.Handle,
			"phrase":      pairPhrase,
			"expiresAt":   relation.ExpiresAt,
			"points":      pair.points,
		})
	}

	// snapshot before the key lock is released; the caller marshals
	// this concurrently with future renewals
	snapshot := *relation
	return &PairingResult{
		Relation: &snapshot,
		Renewed:  renewed,
		Phrase:   pairPhrase,
		PointsA:  pointsA,
		PointsB:  pointsB,
		StatsA:   s.statsLocked(userA),
		StatsB:   s.statsLocked(userB),
	}, nil
}

// assumes the pair's key lock is held; a renewal never shortens the
// deadline
func (s *Service) getOrRenewRelation(pairKey string, a, b model.UserID, kind model.PairKind, pairPhrase string, metadata map[string]string, now time.Time) (*model.Relation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if relation, ok := s.relations[pairKey]; ok && !relation.Expired(now) {
		deadline := now.Add(RelationDuration(kind))
		if deadline.After(relation.ExpiresAt) {
			relation.ExpiresAt = deadline
		}
		relation.Renewed++
		relation.Phrase = pairPhrase
		return relation, true
	}

	userA, userB := a, b
	if userB < userA {
		userA, userB = userB, userA
	}
	relation := &model.Relation{
		ID:        model.RelationID(model.CreateID()),
		UserA:     userA,
		UserB:     userB,
		CreatedAt: now,
		ExpiresAt: now.Add(RelationDuration(kind)),
		Phrase:    pairPhrase,
		Metadata:  metadata,
	}
	s.relations[pairKey] = relation
	return relation, false
}

// ActiveRelation returns a copy of the pair's non-expired relation.
func (s *Service) ActiveRelation(a, b model.UserID) (*model.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	relation, err := s.activeRelationLocked(a, b)
	if err != nil {
		return nil, err
	}
	snapshot := *relation
	return &snapshot, nil
}

// assumes s.mu is held in at least read mode
func (s *Service) activeRelationLocked(a, b model.UserID) (*model.Relation, error) {
	relation, ok := s.relations[model.PairKey(a, b)]
	if !ok || relation.Expired(s.clock()) {
		return nil, model.ErrorRelationExpiredOrMissing
	}
	return relation, nil
}
