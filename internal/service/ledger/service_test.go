package ledger

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"uk.co.dudmesh.tether/internal/model"
	"uk.co.dudmesh.tether/internal/phrase"
)

// fakeStore is an in-memory Persistence; the engine must behave
// identically whether or not durable writes succeed.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]json.RawMessage{}}
}

func (f *fakeStore) Put(kind, id string, doc interface{}) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[kind] == nil {
		f.docs[kind] = map[string]json.RawMessage{}
	}
	f.docs[kind][id] = raw
}

func (f *fakeStore) Delete(kind, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs[kind], id)
}

func (f *fakeStore) LoadAll(kind string) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := map[string]json.RawMessage{}
	for id, doc := range f.docs[kind] {
		docs[id] = doc
	}
	return docs, nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	start, _ := time.ParseInLocation("2006-01-02 15:04", "2026-08-01 12:00", time.Local)
	return &manualClock{now: start}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *manualClock) {
	t.Helper()
	service := New(newFakeStore(), phrase.New())
	clock := newManualClock()
	service.clock = clock.Now

	// keep the outbox drained so no test ever depends on event
	// delivery succeeding
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-service.Events():
			case <-done:
				return
			}
		}
	}()
	t.Cleanup(func() { close(done) })

	return service, clock
}

func mustCreateUser(t *testing.T, service *Service, handle string) *model.User {
	t.Helper()
	user, err := service.CreateUser(&model.CreateUserParams{
		Handle:   handle,
		RealName: handle + " Real",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("creating user %s: %+v", handle, err)
	}
	return user
}
