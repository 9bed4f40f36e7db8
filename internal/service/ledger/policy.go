package ledger

import (
	"time"

	"uk.co.dudmesh.tether/internal/model"
)

const (
	// DecayWindow is the period over which a point entry's contribution
	// fades linearly to zero.
	DecayWindow = 30 * 24 * time.Hour

	// StreakCadence pays one star to each participant every time the
	// streak crosses another multiple of this many days.
	StreakCadence = 5

	// MilestoneSize pays one star per this many distinct counterparts.
	MilestoneSize = 100

	physicalDuration = 24 * time.Hour
	digitalDuration  = 1 * time.Hour
)

// RelationDuration is the lifetime policy per pairing kind. Digital
// pairings are protocol-mediated rather than proximate and live short.
func RelationDuration(kind model.PairKind) time.Duration {
	if kind == model.PairKindDigital {
		return digitalDuration
	}
	return physicalDuration
}

type pointValues struct {
	first  int
	repeat int
}

var pointTable = map[model.PairKind]pointValues{
	model.PairKindPhysical: {first: 10, repeat: 15},
	model.PairKindCheckin:  {first: 10, repeat: 15},
	model.PairKindService:  {first: 10, repeat: 15},
	model.PairKindDigital:  {first: 5, repeat: 8},
}

// PointValue is the fixed award for a pairing: a counterpart never met
// before pays the first-encounter value, anyone else the higher
// re-encounter value.
func PointValue(kind model.PairKind, met bool) int {
	values, ok := pointTable[kind]
	if !ok {
		values = pointTable[model.PairKindPhysical]
	}
	if met {
		return values.repeat
	}
	return values.first
}
