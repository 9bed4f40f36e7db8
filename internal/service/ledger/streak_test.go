package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"uk.co.dudmesh.tether/internal/model"
)

func TestStreaks(t *testing.T) {
	assert := assert.New(t)

	service, clock := newTestService(t)
	alice := mustCreateUser(t, service, "alice")
	bob := mustCreateUser(t, service, "bob")

	pair := func() {
		_, err := service.ConfirmPairing(alice.ID, bob.ID, model.PairKindPhysical, nil)
		assert.Nil(err)
	}

	t.Run("five consecutive days pay one star each", func(t *testing.T) {
		for day := 0; day < 5; day++ {
			pair()
			if day < 4 {
				clock.Advance(24 * time.Hour)
			}
		}

		record := service.StreakFor(alice.ID, bob.ID)
		assert.Equal(5, record.CurrentStreak)
		assert.Equal(5, record.BestStreak)
		assert.Equal(1, record.StarsAwarded)

		for _, userID := range []model.UserID{alice.ID, bob.ID} {
			user, err := service.FetchUser(userID)
			assert.Nil(err)
			assert.Equal(1, user.StarsEarned)
			assert.Len(user.Stars, 1)
			assert.Equal(model.StarReasonStreak, user.Stars[0].Reason)
		}
	})

	t.Run("same-day re-pairing is a no-op", func(t *testing.T) {
		pair()
		record := service.StreakFor(alice.ID, bob.ID)
		assert.Equal(5, record.CurrentStreak)
		assert.Equal(1, record.StarsAwarded)

		user, err := service.FetchUser(alice.ID)
		assert.Nil(err)
		assert.Equal(1, user.StarsEarned)
	})

	t.Run("a gap resets to one", func(t *testing.T) {
		clock.Advance(48 * time.Hour)
		pair()
		record := service.StreakFor(alice.ID, bob.ID)
		assert.Equal(1, record.CurrentStreak)
		assert.Equal(5, record.BestStreak)
	})

	t.Run("yesterday increments by exactly one", func(t *testing.T) {
		clock.Advance(24 * time.Hour)
		pair()
		record := service.StreakFor(alice.ID, bob.ID)
		assert.Equal(2, record.CurrentStreak)
	})

	t.Run("stats carry the best streak across pairs", func(t *testing.T) {
		stats, err := service.Stats(alice.ID)
		assert.Nil(err)
		assert.Equal(5, stats.BestStreak)
	})
}

func TestStreakCadenceNeverDoublePays(t *testing.T) {
	assert := assert.New(t)

	service, clock := newTestService(t)
	alice := mustCreateUser(t, service, "alice")
	bob := mustCreateUser(t, service, "bob")

	// ten consecutive days cross the cadence twice
	for day := 0; day < 10; day++ {
		_, err := service.ConfirmPairing(alice.ID, bob.ID, model.PairKindPhysical, nil)
		assert.Nil(err)
		clock.Advance(24 * time.Hour)
	}

	record := service.StreakFor(alice.ID, bob.ID)
	assert.Equal(10, record.CurrentStreak)
	assert.Equal(2, record.StarsAwarded)

	user, err := service.FetchUser(alice.ID)
	assert.Nil(err)
	assert.Equal(2, user.StarsEarned)
}

func TestStreakHistory(t *testing.T) {
	assert := assert.New(t)

	service, clock := newTestService(t)
	alice := mustCreateUser(t, service, "alice")
	bob := mustCreateUser(t, service, "bob")

	for day := 0; day < 3; day++ {
		_, err := service.ConfirmPairing(alice.ID, bob.ID, model.PairKindPhysical, nil)
		assert.Nil(err)
		clock.Advance(24 * time.Hour)
	}

	record := service.StreakFor(alice.ID, bob.ID)
	assert.Len(record.History, 3)
	assert.Equal(1, record.History[0].Streak)
	assert.Equal(3, record.History[2].Streak)
}
