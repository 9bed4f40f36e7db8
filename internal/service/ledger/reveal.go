package ledger

import (
	"time"

	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
)

// DirectReveal unilaterally grants `to` visibility into `from`'s real
// identity. Strictly one-directional: nothing here touches what `from`
// can see.
func (s *Service) DirectReveal(from, to model.UserID) error {
	unlock := s.locks.acquire(string(from), string(to))
	defer unlock()

	revealer, viewer, err := s.lookupPair(from, to)
	if err != nil {
		return err
	}
	if err := s.checkRevealAllowed(revealer, viewer); err != nil {
		return err
	}

	s.writeReveal(revealer, viewer)
	s.store.Put(ledgerstore.KindUser, string(revealer.ID), revealer)
	s.store.Put(ledgerstore.KindUser, string(viewer.ID), viewer)
	return nil
}

func (s *Service) checkRevealAllowed(revealer, viewer *model.User) error {
	if !revealer.HasRealIdentity() {
		return model.ErrorProfileIncomplete
	}
	if _, already := viewer.CanSee[revealer.ID]; already {
		return model.ErrorDuplicateRequest
	}
	if revealer.Met[viewer.ID] == 0 {
		if _, err := s.ActiveRelation(revealer.ID, viewer.ID); err != nil {
			return model.ErrorRelationExpiredOrMissing
		}
	}
	return nil
}

// assumes both key locks are held and checks have passed
func (s *Service) writeReveal(revealer, viewer *model.User) {
	now := s.clock()
	if viewer.CanSee == nil {
		viewer.CanSee = map[model.UserID]model.RevealEntry{}
	}
	if revealer.RevealedTo == nil {
		revealer.RevealedTo = map[model.UserID]time.Time{}
	}
	viewer.CanSee[revealer.ID] = model.RevealEntry{
		RevealedAt: now,
		RealName:   revealer.RealName,
		PhotoURL:   revealer.PhotoURL,
	}
	revealer.RevealedTo[viewer.ID] = now
	s.emit(model.EventRevealGranted, viewer.ID, map[string]interface{}{
		"userId":   revealer.ID,
		"handle":   revealer.Handle,
		"realName": revealer.RealName,
	})
}

// RequestReveal asks `target` to reveal to `requester`. At most one
// pending request per ordered (requester, target) pair.
func (s *Service) RequestReveal(requester, target model.UserID) (*model.RevealRequest, error) {
	unlock := s.locks.acquire(string(requester), string(target))
	defer unlock()

	from, to, err := s.lookupPair(requester, target)
	if err != nil {
		return nil, err
	}
	if _, already := from.CanSee[to.ID]; already {
		return nil, model.ErrorDuplicateRequest
	}

	s.mu.Lock()
	for _, existing := range s.requests {
		if existing.Requester == requester && existing.Target == target && existing.Status == model.RevealRequestPending {
			s.mu.Unlock()
			return nil, model.ErrorDuplicateRequest
		}
	}
	request := &model.RevealRequest{
		ID:        model.CreateID(),
		Requester: requester,
		Target:    target,
		CreatedAt: s.clock(),
		Status:    model.RevealRequestPending,
	}
	if relation, err := s.activeRelationLocked(requester, target); err == nil {
		request.RelationID = relation.ID
	}
	s.requests[request.ID] = request
	s.mu.Unlock()

	s.store.Put(ledgerstore.KindRevealRequest, request.ID, request)
	s.emit(model.EventRevealRequested, target, map[string]interface{}{
		"requestId": request.ID,
		"handle":    from.Handle,
	})
	snapshot := *request
	return &snapshot, nil
}

// ResolveRevealRequest lets the target accept or decline. Accepting
// performs the same gated canSee write as a direct reveal, from target
// to requester; a gate failure surfaces and the request stays pending.
func (s *Service) ResolveRevealRequest(requestID string, actor model.UserID, accept bool) (*model.RevealRequest, error) {
	s.mu.RLock()
	request, ok := s.requests[requestID]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrorRequestNotFound
	}
	if request.Target != actor {
		return nil, model.ErrorInvalidParticipant
	}

	unlock := s.locks.acquire(string(request.Requester), string(request.Target))
	defer unlock()

	if request.Status != model.RevealRequestPending {
		return nil, model.ErrorDuplicateRequest
	}

	target, requester, err := s.lookupPair(request.Target, request.Requester)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if !accept {
		request.Status = model.RevealRequestDeclined
		request.ResolvedAt = &now
		s.store.Put(ledgerstore.KindRevealRequest, request.ID, request)
		s.emit(model.EventRevealDeclined, request.Requester, map[string]interface{}{
			"requestId": request.ID,
		})
		snapshot := *request
		return &snapshot, nil
	}

	// an accept that cannot grant anything fails; the request stays
	// pending so the target can resolve it once the gate clears
	if err := s.checkRevealAllowed(target, requester); err != nil {
		return nil, err
	}
	request.Status = model.RevealRequestAccepted
	request.ResolvedAt = &now
	s.writeReveal(target, requester)
	s.store.Put(ledgerstore.KindUser, string(target.ID), target)
	s.store.Put(ledgerstore.KindUser, string(requester.ID), requester)
	s.store.Put(ledgerstore.KindRevealRequest, request.ID, request)
	snapshot := *request
	return &snapshot, nil
}

// CanSee reports whether viewer has been granted subject's identity.
func (s *Service) CanSee(viewer, subject model.UserID) (model.RevealEntry, bool) {
	unlock := s.locks.acquire(string(viewer))
	defer unlock()

	user, err := s.FetchUser(viewer)
	if err != nil {
		return model.RevealEntry{}, false
	}
	entry, ok := user.CanSee[subject]
	return entry, ok
}
