package rendezvous

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.tether/internal/model"
	"uk.co.dudmesh.tether/internal/service/ledger"
)

type pairingCall struct {
	a, b     model.UserID
	kind     model.PairKind
	metadata map[string]string
}

// fakeLedger records ConfirmPairing calls; the rendezvous front-ends
// only route into the engine, they own no ledger semantics themselves.
type fakeLedger struct {
	mu    sync.Mutex
	users map[model.UserID]*model.User
	calls []pairingCall
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{users: map[model.UserID]*model.User{}}
}

func (f *fakeLedger) addUser(handle string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &model.User{
		ID:      model.UserID(model.CreateID()),
		Handle:  handle,
		TapCode: "tap-" + handle,
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeLedger) ConfirmPairing(a, b model.UserID, kind model.PairKind, metadata map[string]string) (*ledger.PairingResult, error) {
	if a == b {
		return nil, model.ErrorSelfPairing
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pairingCall{a, b, kind, metadata})
	return &ledger.PairingResult{
		Relation: &model.Relation{ID: model.RelationID(model.CreateID())},
	}, nil
}

func (f *fakeLedger) FetchUser(userID model.UserID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, model.ErrorUserNotFound
}

func (f *fakeLedger) FindByHandle(handle string) (*model.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Handle, handle) {
			return user, true
		}
	}
	return nil, false
}

func (f *fakeLedger) FindByTapCode(code string) (*model.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.TapCode == code {
			return user, true
		}
	}
	return nil, false
}

func (f *fakeLedger) CreateGuest(handle string) (*model.User, error) {
	user := f.addUser(handle)
	user.Status = model.UserStatusGuest
	return user, nil
}

func (f *fakeLedger) pairings() []pairingCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pairingCall(nil), f.calls...)
}

func newTestRendezvous() (*Service, *fakeLedger) {
	fake := newFakeLedger()
	return New(fake, 90*time.Second, 2*time.Hour), fake
}

func TestCodeSessions(t *testing.T) {
	assert := assert.New(t)

	service, fake := newTestRendezvous()
	host := fake.addUser("host")
	joiner := fake.addUser("joiner")

	var code string

	t.Run("start hands out a six digit code", func(t *testing.T) {
		session, err := service.StartCodeSession(host.ID)
		assert.Nil(err)
		assert.Len(session.Code, 6)
		code = session.Code
	})

	t.Run("first join wins and pairs", func(t *testing.T) {
		result, err := service.JoinCode(code, joiner.ID)
		assert.Nil(err)
		assert.NotNil(result)

		calls := fake.pairings()
		assert.Len(calls, 1)
		assert.Equal(host.ID, calls[0].a)
		assert.Equal(joiner.ID, calls[0].b)
		assert.Equal(model.PairKindPhysical, calls[0].kind)
	})

	t.Run("the code is single use", func(t *testing.T) {
		_, err := service.JoinCode(code, joiner.ID)
		assert.ErrorIs(err, model.ErrorSessionNotFound)
	})

	t.Run("unknown code rejected", func(t *testing.T) {
		_, err := service.JoinCode("000000", joiner.ID)
		assert.ErrorIs(err, model.ErrorSessionNotFound)
	})

	t.Run("unknown host rejected", func(t *testing.T) {
		_, err := service.StartCodeSession(model.UserID("nobody"))
		assert.ErrorIs(err, model.ErrorInvalidParticipant)
	})
}

func TestJoinCodeRejectionKeepsCode(t *testing.T) {
	assert := assert.New(t)

	service, fake := newTestRendezvous()
	host := fake.addUser("host")
	joiner := fake.addUser("joiner")

	session, err := service.StartCodeSession(host.ID)
	assert.Nil(err)

	// the host submitting their own code is rejected
	_, err = service.JoinCode(session.Code, host.ID)
	assert.ErrorIs(err, model.ErrorSelfPairing)

	// the code is still live for a real joiner
	result, err := service.JoinCode(session.Code, joiner.ID)
	assert.Nil(err)
	assert.NotNil(result)
	assert.Len(fake.pairings(), 1)
}

func TestTapPairing(t *testing.T) {
	assert := assert.New(t)

	service, fake := newTestRendezvous()
	owner := fake.addUser("owner")
	visitor := fake.addUser("Visitor")

	t.Run("landing resolves the owner", func(t *testing.T) {
		identity, err := service.TapLanding(owner.TapCode)
		assert.Nil(err)
		assert.Equal("owner", identity.Handle)
	})

	t.Run("unknown tap code", func(t *testing.T) {
		_, err := service.TapLanding("bogus")
		assert.ErrorIs(err, model.ErrorUserNotFound)
	})

	t.Run("visitor matched case-insensitively", func(t *testing.T) {
		_, err := service.TapPair(owner.TapCode, "vIsItOr")
		assert.Nil(err)

		calls := fake.pairings()
		assert.Len(calls, 1)
		assert.Equal(owner.ID, calls[0].a)
		assert.Equal(visitor.ID, calls[0].b)
		assert.Equal("tap", calls[0].metadata["via"])
	})

	t.Run("unmatched visitor provisioned as guest", func(t *testing.T) {
		_, err := service.TapPair(owner.TapCode, "stranger")
		assert.Nil(err)

		guest, ok := fake.FindByHandle("stranger")
		assert.True(ok)
		assert.Equal(model.UserStatusGuest, guest.Status)

		calls := fake.pairings()
		assert.Equal(guest.ID, calls[1].b)
	})
}
