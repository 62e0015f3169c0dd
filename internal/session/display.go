package session

import "github.com/perceptlab/buttonbox/internal/models"

// Display is the status surface the session reports to. Implementations
// render however they like; the session only pushes snapshots. All calls
// come from the session worker goroutine.
type Display interface {
	// ShowStatus presents the current trial snapshot.
	ShowStatus(s models.Status)

	// ClearStatus blanks the trial snapshot.
	ClearStatus()

	// SetControls enables or disables the operator controls.
	SetControls(c models.Controls)

	// SetConditions announces the condition roster once it is built.
	SetConditions(names []string)

	// ShowMessage presents a free-form operator message.
	ShowMessage(msg string)
}

// Confirmer asks the operator a yes/no question before an override runs.
// Called from the dispatch context, never from the worker.
type Confirmer interface {
	ConfirmOverride(name string) bool
}

// Cue emits the audible signal marking priming, condition completion, and
// session completion.
type Cue interface {
	Signal()
}
