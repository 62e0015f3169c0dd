// Package models defines the core domain types for buttonbox.
package models

import "time"

// NumButtons is the number of physical response buttons on the panel.
const NumButtons = 4

// ButtonIndex identifies one physical button, in [0, NumButtons).
type ButtonIndex int

// Valid reports whether b is within the panel's button range.
func (b ButtonIndex) Valid() bool {
	return b >= 0 && b < NumButtons
}

// Display returns the 1-based index shown to the operator.
func (b ButtonIndex) Display() int {
	return int(b) + 1
}

// Pattern is the behavioral type of a trial. It determines which buttons
// light up in which color and which press, if any, counts as correct.
type Pattern int

const (
	// PatternGoBlue lights one button blue; pressing it is correct.
	PatternGoBlue Pattern = iota
	// PatternStopRed lights one button red; withholding the press is correct.
	PatternStopRed
	// PatternOnlyBlue lights the target blue and all others red as distractors.
	PatternOnlyBlue
	// PatternOnlyRed lights the target red and all others blue as distractors.
	PatternOnlyRed
)

// String returns the wire/display name of the pattern.
func (p Pattern) String() string {
	switch p {
	case PatternGoBlue:
		return "GO_BLUE"
	case PatternStopRed:
		return "STOP_RED"
	case PatternOnlyBlue:
		return "ONLY_BLUE"
	case PatternOnlyRed:
		return "ONLY_RED"
	default:
		return "UNKNOWN"
	}
}

// Interrupt reports whether the pattern belongs to the interrupt class
// (StopRed/OnlyRed). Two interrupt trials may never be adjacent within a
// condition.
func (p Pattern) Interrupt() bool {
	return p == PatternStopRed || p == PatternOnlyRed
}

// TracksBlue reports whether the pattern shares the "last blue target"
// no-immediate-repeat tracker.
func (p Pattern) TracksBlue() bool {
	return p == PatternGoBlue || p == PatternOnlyBlue
}

// Trial is one discrete lighting instruction within a condition. The concrete
// button assignment is resolved at execution time, not at build time.
type Trial struct {
	Pattern Pattern
}

// Assignment is the resolved button layout for one trial instance.
type Assignment struct {
	// Lit lists every illuminated button in wire order (distractors first,
	// target last for the Only* patterns).
	Lit []ButtonIndex
	// Target is the button whose press completes the trial.
	Target ButtonIndex
}

// Condition is a named, fixed-length block of trials sharing one
// executive-function task type. Its trial list is generated once per run and
// never mutated afterwards.
type Condition struct {
	Name   string
	Trials []Trial
}

// Run is one full session: the canonical condition order fixed at build time,
// the names still pending in that order, and the override bookkeeping.
type Run struct {
	ID         string
	Conditions []Condition
	// Pending holds the names of conditions not yet consumed, in canonical
	// order. Completing a condition (canonically or via override) removes
	// one occurrence; stopping a condition removes none.
	Pending []string
	// Override names a condition requested out of canonical order, or "".
	Override string
	// LastRun is the most recently executed condition name, for redo.
	LastRun   string
	StartedAt time.Time
}

// Find returns the condition with the given name, or nil.
func (r *Run) Find(name string) *Condition {
	for i := range r.Conditions {
		if r.Conditions[i].Name == name {
			return &r.Conditions[i]
		}
	}
	return nil
}

// ConsumePending removes the first pending occurrence of name and reports
// whether one was removed.
func (r *Run) ConsumePending(name string) bool {
	for i, n := range r.Pending {
		if n == name {
			r.Pending = append(r.Pending[:i], r.Pending[i+1:]...)
			return true
		}
	}
	return false
}

// PressEvent is a single button press reported by the panel.
type PressEvent struct {
	Button ButtonIndex
	At     time.Time
}

// TrialOutcome records what happened on one executed trial. Outcomes live in
// memory for the duration of the session only.
type TrialOutcome struct {
	Condition string
	TrialNum  int // 1-based
	Pattern   Pattern
	Target    ButtonIndex
	Pressed   bool
	Button    ButtonIndex // valid only when Pressed
	Reaction  time.Duration
}

// Status is the snapshot pushed to the display before each trial command.
type Status struct {
	Condition string
	TrialNum  int // 1-based
	Pattern   Pattern
	Lit       []ButtonIndex
	Target    ButtonIndex
	HasTarget bool
	// Repeat marks an override/redo run of an already-seen condition.
	Repeat bool
}

// Controls describes which operator controls are currently enabled.
type Controls struct {
	Start bool
	Next  bool
	Stop  bool
	Redo  bool
}

// State is the controller's run-level state.
type State int

const (
	StateIdle State = iota
	StatePriming
	StateRunningCondition
	StateConditionComplete
	StateConditionStopped
	StateAwaitingAdvance
	StateDone
)

// String returns a short state label for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePriming:
		return "priming"
	case StateRunningCondition:
		return "running"
	case StateConditionComplete:
		return "condition-complete"
	case StateConditionStopped:
		return "condition-stopped"
	case StateAwaitingAdvance:
		return "awaiting-advance"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
