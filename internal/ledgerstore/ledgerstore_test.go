package ledgerstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.tether/internal/boot"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func testConfig(t *testing.T) *boot.Config {
	t.Helper()
	config := &boot.Config{}
	config.DataDir = t.TempDir()
	config.Ledger.FlushInterval = 50 * time.Millisecond
	return config
}

func TestStoreRoundTrip(t *testing.T) {
	assert := assert.New(t)

	config := testConfig(t)
	store, err := Open(config)
	assert.Nil(err)

	t.Run("puts are invisible until flushed", func(t *testing.T) {
		store.Put(KindUser, "u1", testDoc{Name: "alice", Count: 1})
		docs, err := store.LoadAll(KindUser)
		assert.Nil(err)
		assert.Len(docs, 0)
	})

	t.Run("flush persists the batch", func(t *testing.T) {
		store.Put(KindUser, "u2", testDoc{Name: "bob", Count: 2})
		assert.Nil(store.Flush())

		docs, err := store.LoadAll(KindUser)
		assert.Nil(err)
		assert.Len(docs, 2)

		doc := testDoc{}
		assert.Nil(json.Unmarshal(docs["u1"], &doc))
		assert.Equal("alice", doc.Name)
	})

	t.Run("later puts win", func(t *testing.T) {
		store.Put(KindUser, "u1", testDoc{Name: "alice", Count: 7})
		assert.Nil(store.Flush())

		docs, err := store.LoadAll(KindUser)
		assert.Nil(err)
		doc := testDoc{}
		assert.Nil(json.Unmarshal(docs["u1"], &doc))
		assert.Equal(7, doc.Count)
	})

	t.Run("kinds are independent", func(t *testing.T) {
		store.Put(KindRelation, "r1", testDoc{Name: "pair"})
		assert.Nil(store.Flush())

		docs, err := store.LoadAll(KindRelation)
		assert.Nil(err)
		assert.Len(docs, 1)
		docs, err = store.LoadAll(KindUser)
		assert.Nil(err)
		assert.Len(docs, 2)
	})

	t.Run("deletes tombstone on flush", func(t *testing.T) {
		store.Delete(KindUser, "u2")
		assert.Nil(store.Flush())

		docs, err := store.LoadAll(KindUser)
		assert.Nil(err)
		assert.Len(docs, 1)
	})

	t.Run("state survives reopen", func(t *testing.T) {
		assert.Nil(store.Close())

		reopened, err := Open(config)
		assert.Nil(err)
		defer reopened.Close()

		docs, err := reopened.LoadAll(KindUser)
		assert.Nil(err)
		assert.Len(docs, 1)
	})
}

func TestCloseFlushesPending(t *testing.T) {
	assert := assert.New(t)

	config := testConfig(t)
	store, err := Open(config)
	assert.Nil(err)

	store.Put(KindStreak, "s1", testDoc{Name: "pending"})
	assert.Nil(store.Close())

	reopened, err := Open(config)
	assert.Nil(err)
	defer reopened.Close()

	docs, err := reopened.LoadAll(KindStreak)
	assert.Nil(err)
	assert.Len(docs, 1)
}

func TestRunFlushesOnInterval(t *testing.T) {
	assert := assert.New(t)

	store, err := Open(testConfig(t))
	assert.Nil(err)
	defer store.Close()

	go store.Run()
	store.Put(KindDonation, "d1", testDoc{Name: "tick"})

	assert.Eventually(func() bool {
		docs, err := store.LoadAll(KindDonation)
		return err == nil && len(docs) == 1
	}, 2*time.Second, 20*time.Millisecond)
}
