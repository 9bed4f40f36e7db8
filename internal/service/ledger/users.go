package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/nrednav/cuid2"
	"golang.org/x/crypto/bcrypt"
	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
)

// CreateUser registers a local account; identity proper belongs to the
// external provider.
func (s *Service) CreateUser(params *model.CreateUserParams) (*model.User, error) {
	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(params.Password), 10)
	if err != nil {
		return nil, fmt.Errorf("generating encoded password: %w", err)
	}

	user := &model.User{
		ID:         model.UserID(model.CreateID()),
		CreatedAt:  s.clock().UTC(),
		Status:     model.UserStatusActive,
		Handle:     params.Handle,
		Password:   string(passwordBytes),
		RealName:   params.RealName,
		PhotoURL:   params.PhotoURL,
		Birthdate:  params.Birthdate,
		TapCode:    cuid2.Generate(),
		Met:        map[model.UserID]int{},
		CanSee:     map[model.UserID]model.RevealEntry{},
		RevealedTo: map[model.UserID]time.Time{},
	}

	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()

	s.store.Put(ledgerstore.KindUser, string(user.ID), user)
	return user, nil
}

// CreateGuest provisions the account behind an unmatched tap visitor.
func (s *Service) CreateGuest(handle string) (*model.User, error) {
	user, err := s.CreateUser(&model.CreateUserParams{
		Handle:   handle,
		Password: model.CreateID(),
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	user.Status = model.UserStatusGuest
	s.mu.Unlock()
	s.store.Put(ledgerstore.KindUser, string(user.ID), user)
	return user, nil
}

func (s *Service) FetchUser(userID model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, model.ErrorUserNotFound
	}
	return user, nil
}

// FindByHandle matches case-insensitively.
func (s *Service) FindByHandle(handle string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Handle, handle) {
			return user, true
		}
	}
	return nil, false
}

func (s *Service) FindByTapCode(code string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.TapCode == code {
			return user, true
		}
	}
	return nil, false
}

// UserStats is the derived public view of a user's ledgers.
type UserStats struct {
	UserID      model.UserID `json:"userId"`
	Handle      string       `json:"handle"`
	Score       float64      `json:"score"`
	StarCount   int          `json:"starCount"`
	StarsEarned int          `json:"starsEarned"`
	Spendable   int          `json:"spendable"`
	Touchers    int          `json:"touchers"`
	BestStreak  int          `json:"bestStreak"`
}

func (s *Service) Stats(userID model.UserID) (*UserStats, error) {
	unlock := s.locks.acquire(string(userID))
	defer unlock()

	user, err := s.FetchUser(userID)
	if err != nil {
		return nil, err
	}
	return s.statsLocked(user), nil
}

// assumes the user's key lock is held
func (s *Service) statsLocked(user *model.User) *UserStats {
	return &UserStats{
		UserID:      user.ID,
		Handle:      user.Handle,
		Score:       scoreAt(user, s.clock()),
		StarCount:   len(user.Stars),
		StarsEarned: user.StarsEarned,
		Spendable:   user.StarsEarned - user.Donated,
		Touchers:    user.Touchers,
		BestStreak:  s.BestStreak(user.ID),
	}
}

func (s *Service) lookupPair(a, b model.UserID) (*model.User, *model.User, error) {
	if a == b {
		return nil, nil, model.ErrorSelfPairing
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	userA, ok := s.users[a]
	if !ok {
		return nil, nil, model.ErrorInvalidParticipant
	}
	userB, ok := s.users[b]
	if !ok {
		return nil, nil, model.ErrorInvalidParticipant
	}
	return userA, userB, nil
}
