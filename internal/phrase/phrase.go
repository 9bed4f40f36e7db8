package phrase

import (
	"math/rand"
	"sync"
	"time"

	"uk.co.dudmesh.tether/internal/model"
)

// presentation-only strings handed out on every confirmed pairing
var affinities = []string{
	"sparks flew",
	"orbits aligned",
	"same wavelength",
	"kindred signal",
	"good frequency",
	"paths crossed",
	"static cleared",
	"found each other",
}

var compatibilities = []string{
	"an easy calm",
	"a slow burn",
	"instant mischief",
	"quiet understanding",
	"loud agreement",
	"opposite poles, same magnet",
	"two clocks ticking together",
	"a long story starting",
	"deja vu, both ways",
	"the rare comfortable silence",
	"trouble, in the best way",
	"a duet waiting to happen",
}

type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Affinity returns a short celebratory phrase for a confirmed pairing.
func (g *Generator) Affinity() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return affinities[g.rng.Intn(len(affinities))]
}

// Compatibility derives a stable phrase from two birthdates, falling
// back to a random affinity phrase when either is absent or malformed.
func (g *Generator) Compatibility(birthA, birthB string) string {
	ta, errA := time.Parse(model.DayFormat, birthA)
	tb, errB := time.Parse(model.DayFormat, birthB)
	if errA != nil || errB != nil {
		return g.Affinity()
	}
	idx := (ta.YearDay() + tb.YearDay()) % len(compatibilities)
	return compatibilities[idx]
}
