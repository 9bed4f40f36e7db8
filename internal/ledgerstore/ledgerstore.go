package ledgerstore

import (
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/gommon/log"
	_ "github.com/mattn/go-sqlite3"
	"uk.co.dudmesh.tether/internal/boot"
)

// Entity kinds persisted by the engine.
const (
	KindUser          = "user"
	KindRelation      = "relation"
	KindStreak        = "streak"
	KindDonation      = "donation"
	KindRevealRequest = "revealreq"
)

// Store is a write-behind document store over sqlite. Mutations mark a
// (kind,id) dirty with a marshalled snapshot; a background loop flushes
// in batches. A nil snapshot is a tombstone.
type Store struct {
	db       *sqlx.DB
	interval time.Duration

	mu    sync.Mutex
	dirty map[dirtyKey][]byte

	done chan struct{}
	once sync.Once
}

type dirtyKey struct {
	kind string
	id   string
}

func Open(config *boot.Config) (*Store, error) {
	dbName := path.Join(config.DataDirectory(), "tether.db")

	db, err := sqlx.Connect("sqlite3", "file:"+dbName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &Store{
		db:       db,
		interval: config.Ledger.FlushInterval,
		dirty:    map[dirtyKey][]byte{},
		done:     make(chan struct{}),
	}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`create table if not exists ledger(
		Kind      text not null,
		ID        text not null,
		Doc       text not null,
		UpdatedAt DATETIME not null,
		primary key (Kind, ID)
	)`)
	if err != nil {
		return fmt.Errorf("creating ledger table: %w", err)
	}
	return nil
}

// Put snapshots doc and schedules it for the next flush. Marshal
// failures are logged, never surfaced.
func (s *Store) Put(kind, id string, doc interface{}) {
	raw, err := json.Marshal(doc)
	if err != nil {
		log.Errorf("marshalling %s/%s: %+v", kind, id, err)
		return
	}
	s.mu.Lock()
	s.dirty[dirtyKey{kind, id}] = raw
	s.mu.Unlock()
}

func (s *Store) Delete(kind, id string) {
	s.mu.Lock()
	s.dirty[dirtyKey{kind, id}] = nil
	s.mu.Unlock()
}

// LoadAll returns every persisted document of a kind, keyed by id.
func (s *Store) LoadAll(kind string) (map[string]json.RawMessage, error) {
	rows := []struct {
		ID  string `db:"ID"`
		Doc string `db:"Doc"`
	}{}
	err := s.db.Select(&rows, `select ID, Doc from ledger where Kind = ?`, kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s documents: %w", kind, err)
	}
	docs := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		docs[row.ID] = json.RawMessage(row.Doc)
	}
	return docs, nil
}

// Flush durably writes the current dirty set in one transaction. On
// failure the batch is merged back so the next tick retries it.
func (s *Store) Flush() error {
	s.mu.Lock()
	if len(s.dirty) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.dirty
	s.dirty = map[dirtyKey][]byte{}
	s.mu.Unlock()

	err := s.writeBatch(batch)
	if err != nil {
		s.mu.Lock()
		for key, doc := range batch {
			if _, overwritten := s.dirty[key]; !overwritten {
				s.dirty[key] = doc
			}
		}
		s.mu.Unlock()
		return fmt.Errorf("flushing ledger batch: %w", err)
	}
	return nil
}

func (s *Store) writeBatch(batch map[dirtyKey][]byte) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for key, doc := range batch {
		if doc == nil {
			if _, err := tx.Exec(`delete from ledger where Kind = ? and ID = ?`, key.kind, key.id); err != nil {
				return fmt.Errorf("deleting %s/%s: %w", key.kind, key.id, err)
			}
			continue
		}
		_, err := tx.Exec(`insert into ledger (Kind, ID, Doc, UpdatedAt) values (?, ?, ?, ?)
			on conflict (Kind, ID) do update set Doc = excluded.Doc, UpdatedAt = excluded.UpdatedAt`,
			key.kind, key.id, string(doc), now)
		if err != nil {
			return fmt.Errorf("upserting %s/%s: %w", key.kind, key.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Run flushes on the configured interval until Close.
func (s *Store) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				log.Errorf("ledger flush: %+v", err)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Store) Close() error {
	s.once.Do(func() { close(s.done) })
	if err := s.Flush(); err != nil {
		log.Errorf("final ledger flush: %+v", err)
	}
	return s.db.Close()
}
