package rendezvous

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nrednav/cuid2"
	"uk.co.dudmesh.tether/internal/model"
	"uk.co.dudmesh.tether/internal/service/ledger"
)

// Ledger is the slice of the social-ledger engine the rendezvous
// front-ends need.
type Ledger interface {
	ConfirmPairing(a, b model.UserID, kind model.PairKind, metadata map[string]string) (*ledger.PairingResult, error)
	FetchUser(userID model.UserID) (*model.User, error)
	FindByHandle(handle string) (*model.User, bool)
	FindByTapCode(code string) (*model.User, bool)
	CreateGuest(handle string) (*model.User, error)
}

// CodeSession is a single-use shared-code rendezvous.
type CodeSession struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Host      model.UserID `json:"-"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Service struct {
	ledger Ledger
	clock  func() time.Time

	mu       sync.Mutex
	sessions map[string]*CodeSession // by code
	rng      *rand.Rand

	sonic *sonicQueue
}

func New(ledgerService Ledger, visitorTimeout, operatorTimeout time.Duration) *Service {
	return &Service{
		ledger:   ledgerService,
		clock:    time.Now,
		sessions: map[string]*CodeSession{},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sonic:    newSonicQueue(visitorTimeout, operatorTimeout),
	}
}

// StartCodeSession hands the host a short human-relayable code.
func (s *Service) StartCodeSession(host model.UserID) (*CodeSession, error) {
	if _, err := s.ledger.FetchUser(host); err != nil {
		return nil, model.ErrorInvalidParticipant
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.freshCode()
	session := &CodeSession{
		ID:        cuid2.Generate(),
		Code:      code,
		Host:      host,
		CreatedAt: s.clock(),
	}
	s.sessions[code] = session
	return session, nil
}

// assumes s.mu is held
func (s *Service) freshCode() string {
	for {
		code := fmt.Sprintf("%06d", s.rng.Intn(1000000))
		if _, taken := s.sessions[code]; !taken {
			return code
		}
	}
}

// JoinCode consumes a session: first join wins.
func (s *Service) JoinCode(code string, joiner model.UserID) (*ledger.PairingResult, error) {
	s.mu.Lock()
	session, ok := s.sessions[code]
	if ok {
		delete(s.sessions, code)
	}
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrorSessionNotFound
	}

	result, err := s.ledger.ConfirmPairing(session.Host, joiner, model.PairKindPhysical, map[string]string{"via": "code"})
	if err != nil {
		// a rejected join must not burn the code
		s.mu.Lock()
		if _, taken := s.sessions[code]; !taken {
			s.sessions[code] = session
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("confirming code pairing: %w", err)
	}
	return result, nil
}

// TapIdentity is the public landing view behind a tap code.
type TapIdentity struct {
	Handle string `json:"handle"`
}

func (s *Service) TapLanding(code string) (*TapIdentity, error) {
	owner, ok := s.ledger.FindByTapCode(code)
	if !ok {
		return nil, model.ErrorUserNotFound
	}
	return &TapIdentity{Handle: owner.Handle}, nil
}

// TapPair matches the visitor to an existing account by name or
// provisions a guest, then pairs.
func (s *Service) TapPair(code, visitorName string) (*ledger.PairingResult, error) {
	owner, ok := s.ledger.FindByTapCode(code)
	if !ok {
		return nil, model.ErrorUserNotFound
	}

	visitor, ok := s.ledger.FindByHandle(visitorName)
	if !ok {
		created, err := s.ledger.CreateGuest(visitorName)
		if err != nil {
			return nil, fmt.Errorf("provisioning guest: %w", err)
		}
		visitor = created
	}

	result, err := s.ledger.ConfirmPairing(owner.ID, visitor.ID, model.PairKindPhysical, map[string]string{"via": "tap"})
	if err != nil {
		return nil, fmt.Errorf("confirming tap pairing: %w", err)
	}
	return result, nil
}
