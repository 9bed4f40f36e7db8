package ledger

import (
	"time"

	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
)

// assumes the user's key lock is held; returns the point value awarded
func (s *Service) appendEncounter(user *model.User, counterpart model.UserID, kind model.PairKind, pairPhrase string, now time.Time) int {
	met := user.Met[counterpart] > 0
	value := PointValue(kind, met)

	user.Encounters = append(user.Encounters, model.EncounterRecord{
		ID:            model.EncounterID(model.CreateID()),
		CounterpartID: counterpart,
		Phrase:        pairPhrase,
		Kind:          kind,
		Timestamp:     now,
		Day:           model.Day(now),
		PointValue:    value,
	})
	user.Met[counterpart]++
	if !met {
		user.Touchers = len(user.Met)
	}
	user.PointLog = append(user.PointLog, model.PointEntry{
		Value:     value,
		Kind:      kind,
		Timestamp: now,
	})
	return value
}

// EncounterHistory returns a copy of a user's pairing history.
func (s *Service) EncounterHistory(userID model.UserID) ([]model.EncounterRecord, error) {
	unlock := s.locks.acquire(string(userID))
	defer unlock()

	user, err := s.FetchUser(userID)
	if err != nil {
		return nil, err
	}
	history := make([]model.EncounterRecord, len(user.Encounters))
	copy(history, user.Encounters)
	return history, nil
}

// AnnotateTip is the one post-creation write an encounter record ever
// sees.
func (s *Service) AnnotateTip(userID model.UserID, encounterID model.EncounterID, amount int) error {
	unlock := s.locks.acquire(string(userID))
	defer unlock()

	user, err := s.FetchUser(userID)
	if err != nil {
		return err
	}
	for i := range user.Encounters {
		if user.Encounters[i].ID == encounterID {
			user.Encounters[i].TipAmount = amount
			s.store.Put(ledgerstore.KindUser, string(user.ID), user)
			return nil
		}
	}
	return model.ErrorEncounterNotFound
}
