package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/perceptlab/buttonbox/internal/link"
	"github.com/perceptlab/buttonbox/internal/models"
	"github.com/perceptlab/buttonbox/internal/protocol"
)

// noButton marks an empty no-immediate-repeat tracker.
const noButton = models.ButtonIndex(-1)

// TrialRunner executes one condition's trial list: per-trial button
// resolution, the lighting command, the press wait, and the inter-trial
// pauses.
type TrialRunner struct {
	ch        link.Channel
	display   Display
	cfg       *Config
	rng       *rand.Rand
	cancelled func() bool
	waiter    *PressWaiter
}

// NewTrialRunner creates a runner over the given channel. The cancelled
// callback is consulted before each trial and at every poll tick.
func NewTrialRunner(ch link.Channel, display Display, cfg *Config, rng *rand.Rand, cancelled func() bool) *TrialRunner {
	if cancelled == nil {
		cancelled = func() bool { return false }
	}
	return &TrialRunner{
		ch:        ch,
		display:   display,
		cfg:       cfg,
		rng:       rng,
		cancelled: cancelled,
		waiter:    NewPressWaiter(ch, cfg.PollInterval, cancelled),
	}
}

// Run executes every trial of the condition in order. It returns early with
// completed=false when cancellation is signaled at a trial boundary, leaving
// the rest of the list unexecuted. The repeat flag only annotates the status
// pushed to the display. A non-nil error means the transport failed and the
// session must halt.
func (r *TrialRunner) Run(cond *models.Condition, repeat bool) (completed bool, outcomes []models.TrialOutcome, err error) {
	lastBlue := noButton
	lastOnlyRed := noButton

	for i, trial := range cond.Trials {
		if r.cancelled() {
			return false, outcomes, nil
		}

		assign := r.resolve(trial.Pattern, lastBlue, lastOnlyRed)

		r.display.ShowStatus(models.Status{
			Condition: cond.Name,
			TrialNum:  i + 1,
			Pattern:   trial.Pattern,
			Lit:       assign.Lit,
			Target:    assign.Target,
			HasTarget: trial.Pattern != models.PatternStopRed,
			Repeat:    repeat,
		})

		if werr := r.ch.WriteLine(protocol.Command(trial.Pattern, assign)); werr != nil {
			return false, outcomes, fmt.Errorf("trial %d command: %w", i+1, werr)
		}

		sent := time.Now()
		press, werr := r.waiter.Wait(r.cfg.PressDeadline, []models.ButtonIndex{assign.Target})
		if werr != nil {
			return false, outcomes, werr
		}

		outcome := models.TrialOutcome{
			Condition: cond.Name,
			TrialNum:  i + 1,
			Pattern:   trial.Pattern,
			Target:    assign.Target,
		}
		if press != nil {
			outcome.Pressed = true
			outcome.Button = press.Button
			outcome.Reaction = press.At.Sub(sent)
		}
		outcomes = append(outcomes, outcome)

		switch trial.Pattern {
		case models.PatternGoBlue, models.PatternOnlyBlue:
			lastBlue = assign.Target
			time.Sleep(r.cfg.InterTrialPause)
		case models.PatternOnlyRed:
			lastOnlyRed = assign.Target
			time.Sleep(r.cfg.InterTrialPause)
		case models.PatternStopRed:
			// A press on a stop trial is a commission error for the
			// participant, not a system error. Pause only when it happened;
			// otherwise the deadline itself consumed the trial's time.
			if press != nil {
				time.Sleep(r.cfg.InterTrialPause)
			}
		}
	}
	return true, outcomes, nil
}

// resolve picks the concrete button assignment for one trial instance.
func (r *TrialRunner) resolve(p models.Pattern, lastBlue, lastOnlyRed models.ButtonIndex) models.Assignment {
	switch p {
	case models.PatternGoBlue:
		target := r.pickExcluding(lastBlue)
		return models.Assignment{Lit: []models.ButtonIndex{target}, Target: target}

	case models.PatternStopRed:
		target := models.ButtonIndex(r.rng.Intn(models.NumButtons))
		return models.Assignment{Lit: []models.ButtonIndex{target}, Target: target}

	case models.PatternOnlyBlue:
		target := r.pickExcluding(lastBlue)
		return models.Assignment{Lit: withDistractors(target), Target: target}

	case models.PatternOnlyRed:
		target := r.pickExcluding(lastOnlyRed)
		return models.Assignment{Lit: withDistractors(target), Target: target}

	default:
		return models.Assignment{}
	}
}

// pickExcluding draws a uniform button index, excluding the given one.
func (r *TrialRunner) pickExcluding(exclude models.ButtonIndex) models.ButtonIndex {
	options := make([]models.ButtonIndex, 0, models.NumButtons)
	for i := models.ButtonIndex(0); i < models.NumButtons; i++ {
		if i != exclude {
			options = append(options, i)
		}
	}
	return options[r.rng.Intn(len(options))]
}

// withDistractors returns all non-target buttons followed by the target,
// matching the wire convention for the Only* commands.
func withDistractors(target models.ButtonIndex) []models.ButtonIndex {
	lit := make([]models.ButtonIndex, 0, models.NumButtons)
	for i := models.ButtonIndex(0); i < models.NumButtons; i++ {
		if i != target {
			lit = append(lit, i)
		}
	}
	return append(lit, target)
}
