package ledger

import (
	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
)

// assumes the user's key lock is held; the caller persists the user
func (s *Service) awardStar(user *model.User, reason string) {
	star := model.Star{
		ID:        model.CreateID(),
		Reason:    reason,
		Timestamp: s.clock(),
	}
	user.Stars = append(user.Stars, star)
	user.StarsEarned++
	s.emit(model.EventStarAwarded, user.ID, map[string]interface{}{
		"starId": star.ID,
		"reason": reason,
		"earned": user.StarsEarned,
	})
}

func (s *Service) checkMilestone(user *model.User) {
	reached := user.Touchers / MilestoneSize
	for user.MilestonesAwarded < reached {
		user.MilestonesAwarded++
		s.awardStar(user, model.StarReasonMilestone)
	}
}

// Donate transfers one unit of spendable balance (earned minus donated;
// received stars never count) from donor to recipient.
func (s *Service) Donate(from, to model.UserID) (*model.StarDonation, error) {
	unlock := s.locks.acquire(string(from), string(to))
	defer unlock()

	donor, recipient, err := s.lookupPair(from, to)
	if err != nil {
		return nil, err
	}

	if donor.StarsEarned-donor.Donated <= 0 {
		return nil, model.ErrorInsufficientStars
	}

	now := s.clock()
	donation := &model.StarDonation{
		ID:        model.CreateID(),
		From:      from,
		To:        to,
		CreatedAt: now,
	}

	donor.Donated++
	recipient.Stars = append(recipient.Stars, model.Star{
		ID:           model.CreateID(),
		SourceUserID: from,
		Reason:       model.StarReasonDonation,
		Timestamp:    now,
	})

	s.mu.Lock()
	s.donations[donation.ID] = donation
	s.mu.Unlock()

	s.store.Put(ledgerstore.KindDonation, donation.ID, donation)
	s.store.Put(ledgerstore.KindUser, string(donor.ID), donor)
	s.store.Put(ledgerstore.KindUser, string(recipient.ID), recipient)

	s.emit(model.EventStarReceived, to, map[string]interface{}{
		"from":       donor.Handle,
		"donationId": donation.ID,
	})
	return donation, nil
}
