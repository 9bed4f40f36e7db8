package rendezvous

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"uk.co.dudmesh.tether/internal/model"
	"uk.co.dudmesh.tether/internal/service/ledger"
)

const (
	// SlotCount frequency slots from BaseFrequency upwards, SlotSpacing
	// hertz apart.
	SlotCount     = 12
	BaseFrequency = 18000.0
	SlotSpacing   = 100.0
)

// QueueEntry is one listener in the sonic rendezvous queue. Never
// persisted.
type QueueEntry struct {
	UserID    model.UserID `json:"userId"`
	Frequency float64      `json:"frequency"`
	JoinedAt  time.Time    `json:"joinedAt"`
	Operator  bool         `json:"operator"`
	EventID   string       `json:"eventId,omitempty"`
}

// sonicQueue is a bounded pool of frequency slots. The cursor walks
// round-robin so recently released frequencies are reused last.
type sonicQueue struct {
	mu     sync.Mutex
	slots  [SlotCount]*QueueEntry
	cursor int

	visitorTimeout  time.Duration
	operatorTimeout time.Duration
}

func newSonicQueue(visitorTimeout, operatorTimeout time.Duration) *sonicQueue {
	return &sonicQueue{
		visitorTimeout:  visitorTimeout,
		operatorTimeout: operatorTimeout,
	}
}

func slotFrequency(index int) float64 {
	return BaseFrequency + float64(index)*SlotSpacing
}

// slotIndex maps a detected frequency to the nearest slot, or -1 when
// it falls outside the pool's band.
func slotIndex(frequency float64) int {
	index := int(math.Round((frequency - BaseFrequency) / SlotSpacing))
	if index < 0 || index >= SlotCount {
		return -1
	}
	return index
}

func (q *sonicQueue) join(userID model.UserID, operator bool, eventID string, now time.Time) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, entry := range q.slots {
		if entry != nil && entry.UserID == userID {
			entry.JoinedAt = now
			return entry.Frequency, nil
		}
	}

	for offset := 0; offset < SlotCount; offset++ {
		index := (q.cursor + offset) % SlotCount
		if q.slots[index] == nil {
			q.slots[index] = &QueueEntry{
				UserID:    userID,
				Frequency: slotFrequency(index),
				JoinedAt:  now,
				Operator:  operator,
				EventID:   eventID,
			}
			q.cursor = (index + 1) % SlotCount
			return q.slots[index].Frequency, nil
		}
	}
	return 0, model.ErrorQueueFull
}

// take resolves a detected frequency and clears both sides in one
// step, so the first report wins and the second finds nothing.
func (q *sonicQueue) take(frequency float64, reporter model.UserID, now time.Time) (emitter QueueEntry, reporterOperator bool, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	index := slotIndex(frequency)
	if index < 0 || q.slots[index] == nil {
		return QueueEntry{}, false, false
	}
	emitter = *q.slots[index]
	if emitter.UserID == reporter {
		return QueueEntry{}, false, false
	}

	q.clearLocked(index, now)
	for i, entry := range q.slots {
		if entry != nil && entry.UserID == reporter {
			reporterOperator = entry.Operator
			q.clearLocked(i, now)
			break
		}
	}
	return emitter, reporterOperator, true
}

func (q *sonicQueue) clearLocked(index int, now time.Time) {
	entry := q.slots[index]
	if entry == nil {
		return
	}
	if entry.Operator {
		entry.JoinedAt = now
		return
	}
	q.slots[index] = nil
}

func (q *sonicQueue) leave(userID model.UserID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, entry := range q.slots {
		if entry != nil && entry.UserID == userID {
			q.slots[i] = nil
			return
		}
	}
}

// sweep drops stale entries, on the role-dependent timeout.
func (q *sonicQueue) sweep(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	swept := 0
	for i, entry := range q.slots {
		if entry == nil {
			continue
		}
		timeout := q.visitorTimeout
		if entry.Operator {
			timeout = q.operatorTimeout
		}
		if now.Sub(entry.JoinedAt) > timeout {
			q.slots[i] = nil
			swept++
		}
	}
	return swept
}

// SonicJoin registers a listener and returns its assigned frequency.
func (s *Service) SonicJoin(userID model.UserID, operator bool, eventID string) (float64, error) {
	if _, err := s.ledger.FetchUser(userID); err != nil {
		return 0, model.ErrorInvalidParticipant
	}
	return s.sonic.join(userID, operator, eventID, s.clock())
}

// SonicReport handles a detected tone. A nil result with nil error
// means nothing matched, including the redundant second report of an
// already-cleared pairing.
func (s *Service) SonicReport(reporter model.UserID, frequency float64) (*ledger.PairingResult, error) {
	if _, err := s.ledger.FetchUser(reporter); err != nil {
		return nil, model.ErrorInvalidParticipant
	}

	emitter, reporterOperator, ok := s.sonic.take(frequency, reporter, s.clock())
	if !ok {
		return nil, nil
	}

	kind := model.PairKindPhysical
	metadata := map[string]string{"via": "sonic"}
	if emitter.Operator || reporterOperator {
		kind = model.PairKindCheckin
	}
	if emitter.EventID != "" {
		metadata["eventId"] = emitter.EventID
	}

	result, err := s.ledger.ConfirmPairing(emitter.UserID, reporter, kind, metadata)
	if err != nil {
		return nil, fmt.Errorf("confirming sonic pairing: %w", err)
	}
	return result, nil
}

// SonicLeave releases the caller's slot.
func (s *Service) SonicLeave(userID model.UserID) {
	s.sonic.leave(userID)
}

// RunSonicSweep evicts stale queue entries until done is closed.
func (s *Service) RunSonicSweep(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if swept := s.sonic.sweep(s.clock()); swept > 0 {
				log.Infof("swept %d stale sonic entries", swept)
			}
		case <-done:
			return
		}
	}
}
