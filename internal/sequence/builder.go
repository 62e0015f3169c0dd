// Package sequence builds the randomized condition roster for one run.
package sequence

import (
	"fmt"
	"math/rand"

	"github.com/perceptlab/buttonbox/internal/models"
)

const (
	// plainTrials is the trial count of a single-pattern condition.
	plainTrials = 10
	// mixedCommon and mixedRare split a mixed condition's trial multiset.
	mixedCommon = 8
	mixedRare   = 2

	// maxShuffleAttempts bounds the rejection-sampling loop. For the 8+2
	// split roughly half of uniform shuffles are accepted, so hitting the
	// cap means the RNG is broken, not unlucky.
	maxShuffleAttempts = 10000
)

// ErrShuffleExhausted is returned when no admissible trial order was found
// within the attempt bound.
var ErrShuffleExhausted = fmt.Errorf("no admissible shuffle within %d attempts", maxShuffleAttempts)

// archetype is the fixed recipe for one condition.
type archetype struct {
	name   string
	common models.Pattern
	rare   models.Pattern // meaningful only when mixed
	mixed  bool
}

// archetypes lists the eight conditions of a session in canonical recipe
// order. The built condition list is shuffled, so this order never reaches
// the operator.
var archetypes = []archetype{
	{name: "Go - Feet Apart", common: models.PatternGoBlue},
	{name: "No Go - Feet Apart", common: models.PatternGoBlue, rare: models.PatternStopRed, mixed: true},
	{name: "No Shift - Feet Apart", common: models.PatternOnlyBlue},
	{name: "Shift - Feet Apart", common: models.PatternOnlyBlue, rare: models.PatternOnlyRed, mixed: true},
	{name: "Go - Feet Together", common: models.PatternGoBlue},
	{name: "No Go - Feet Together", common: models.PatternGoBlue, rare: models.PatternStopRed, mixed: true},
	{name: "No Shift - Feet Together", common: models.PatternOnlyBlue},
	{name: "Shift - Feet Together", common: models.PatternOnlyBlue, rare: models.PatternOnlyRed, mixed: true},
}

// Builder produces the ordered condition list for a run.
type Builder struct {
	rng *rand.Rand
}

// New creates a Builder drawing from the given source of randomness.
func New(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

// Build constructs all conditions, applies the no-adjacent-interrupt rule to
// mixed conditions, and shuffles the condition order. The result is returned
// once and frozen by the caller as the run's canonical order.
func (b *Builder) Build() ([]models.Condition, error) {
	conditions := make([]models.Condition, 0, len(archetypes))
	for _, a := range archetypes {
		trials, err := b.buildTrials(a)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", a.name, err)
		}
		conditions = append(conditions, models.Condition{Name: a.name, Trials: trials})
	}

	b.rng.Shuffle(len(conditions), func(i, j int) {
		conditions[i], conditions[j] = conditions[j], conditions[i]
	})
	return conditions, nil
}

// buildTrials assembles one condition's trial list. Plain conditions are
// pattern-homogeneous and need no shuffling; mixed conditions are reshuffled
// until no two interrupt trials are adjacent.
func (b *Builder) buildTrials(a archetype) ([]models.Trial, error) {
	if !a.mixed {
		trials := make([]models.Trial, plainTrials)
		for i := range trials {
			trials[i] = models.Trial{Pattern: a.common}
		}
		return trials, nil
	}

	trials := make([]models.Trial, 0, mixedCommon+mixedRare)
	for i := 0; i < mixedCommon; i++ {
		trials = append(trials, models.Trial{Pattern: a.common})
	}
	for i := 0; i < mixedRare; i++ {
		trials = append(trials, models.Trial{Pattern: a.rare})
	}

	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		b.rng.Shuffle(len(trials), func(i, j int) {
			trials[i], trials[j] = trials[j], trials[i]
		})
		if !hasAdjacentInterrupts(trials) {
			return trials, nil
		}
	}
	return nil, ErrShuffleExhausted
}

// hasAdjacentInterrupts reports whether two interrupt-class trials sit next
// to each other.
func hasAdjacentInterrupts(trials []models.Trial) bool {
	for i := 0; i < len(trials)-1; i++ {
		if trials[i].Pattern.Interrupt() && trials[i+1].Pattern.Interrupt() {
			return true
		}
	}
	return false
}
