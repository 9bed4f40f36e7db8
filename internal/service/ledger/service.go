package ledger

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.tether/internal/ledgerstore"
	"uk.co.dudmesh.tether/internal/model"
	"uk.co.dudmesh.tether/internal/phrase"
)

const outboxBuffer = 256

// Persistence is the durability contract the engine writes through.
// Writes are asynchronous and best-effort.
type Persistence interface {
	Put(kind, id string, doc interface{})
	Delete(kind, id string)
	LoadAll(kind string) (map[string]json.RawMessage, error)
}

// Service is the social-ledger engine: relation lifecycle, encounter
// history, decayed scoring, streaks, the star economy and reveal state.
// Every mutation is serialized per affected key.
type Service struct {
	store   Persistence
	phrases *phrase.Generator
	clock   func() time.Time
	locks   *keyedLocks

	mu        sync.RWMutex
	users     map[model.UserID]*model.User
	relations map[string]*model.Relation // by pair key
	streaks   map[string]*model.StreakRecord
	donations map[string]*model.StarDonation
	requests  map[string]*model.RevealRequest

	outbox chan model.Event
	once   sync.Once
}

func New(store Persistence, phrases *phrase.Generator) *Service {
	s := &Service{
		store:     store,
		phrases:   phrases,
		clock:     time.Now,
		locks:     newKeyedLocks(),
		users:     map[model.UserID]*model.User{},
		relations: map[string]*model.Relation{},
		streaks:   map[string]*model.StreakRecord{},
		donations: map[string]*model.StarDonation{},
		requests:  map[string]*model.RevealRequest{},
		outbox:    make(chan model.Event, outboxBuffer),
	}
	s.load()
	return s
}

// Events is the engine's outbox; nothing in the engine waits on
// delivery.
func (s *Service) Events() <-chan model.Event {
	return s.outbox
}

func (s *Service) emit(eventType model.EventType, userID model.UserID, payload interface{}) {
	event := model.Event{
		ID:        model.CreateID(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		Timestamp: s.clock(),
	}
	select {
	case s.outbox <- event:
	default:
		log.Warnf("outbox full, dropping %s for %s", eventType, userID)
	}
}

// any load failure degrades to empty state; the engine must come up
// regardless
func (s *Service) load() {
	loadInto(s.store, ledgerstore.KindUser, func(id string, u *model.User) {
		u.RebuildMet()
		s.users[u.ID] = u
	})
	loadInto(s.store, ledgerstore.KindRelation, func(id string, r *model.Relation) {
		s.relations[model.PairKey(r.UserA, r.UserB)] = r
	})
	loadInto(s.store, ledgerstore.KindStreak, func(id string, r *model.StreakRecord) {
		s.streaks[r.PairKey] = r
	})
	loadInto(s.store, ledgerstore.KindDonation, func(id string, d *model.StarDonation) {
		s.donations[d.ID] = d
	})
	loadInto(s.store, ledgerstore.KindRevealRequest, func(id string, r *model.RevealRequest) {
		s.requests[r.ID] = r
	})
	log.Infof("ledger loaded: %d users, %d relations, %d streaks", len(s.users), len(s.relations), len(s.streaks))
}

func loadInto[T any](store Persistence, kind string, accept func(string, *T)) {
	docs, err := store.LoadAll(kind)
	if err != nil {
		log.Errorf("loading %s state, starting empty: %+v", kind, err)
		return
	}
	for id, doc := range docs {
		entity := new(T)
		if err := json.Unmarshal(doc, entity); err != nil {
			log.Errorf("unmarshalling %s/%s, skipping: %+v", kind, id, err)
			continue
		}
		accept(id, entity)
	}
}

// Run drives the background sweeps until done is closed.
func (s *Service) Run(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep(s.clock())
		case <-done:
			return
		}
	}
}

func (s *Service) Close() {
	s.once.Do(func() { close(s.outbox) })
}
