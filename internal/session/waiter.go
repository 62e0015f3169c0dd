package session

import (
	"fmt"
	"time"

	"github.com/perceptlab/buttonbox/internal/link"
	"github.com/perceptlab/buttonbox/internal/models"
	"github.com/perceptlab/buttonbox/internal/protocol"
)

// PressWaiter polls the channel for a press of an expected button until a
// deadline elapses. At most one PressWaiter is active at any time; the
// session worker owns the channel while it runs.
type PressWaiter struct {
	ch        link.Channel
	poll      time.Duration
	cancelled func() bool
}

// NewPressWaiter creates a waiter polling ch at the given interval. The
// cancelled callback is checked at every poll tick so a stop signal is
// observed without waiting out the deadline.
func NewPressWaiter(ch link.Channel, poll time.Duration, cancelled func() bool) *PressWaiter {
	if cancelled == nil {
		cancelled = func() bool { return false }
	}
	return &PressWaiter{ch: ch, poll: poll, cancelled: cancelled}
}

// Wait blocks until a press of one of the expected buttons arrives, the
// deadline elapses, or cancellation is signaled. A nil event with a nil
// error is a miss (or a cancellation), not a failure. Presses of
// non-expected buttons and unparseable lines are discarded and polling
// continues. A transport error ends the session and is returned as-is.
func (w *PressWaiter) Wait(deadline time.Duration, expected []models.ButtonIndex) (*models.PressEvent, error) {
	until := time.Now().Add(deadline)
	for time.Now().Before(until) {
		if w.cancelled() {
			return nil, nil
		}

		// Drain every line that is already available before sleeping.
		for {
			line, ok, err := w.ch.ReadLine()
			if err != nil {
				return nil, fmt.Errorf("press wait: %w", err)
			}
			if !ok {
				break
			}
			idx, perr := protocol.ParsePress(line)
			if perr != nil {
				continue
			}
			if !contains(expected, idx) {
				continue
			}
			return &models.PressEvent{Button: idx, At: time.Now()}, nil
		}

		time.Sleep(w.poll)
	}
	return nil, nil
}

func contains(set []models.ButtonIndex, b models.ButtonIndex) bool {
	for _, v := range set {
		if v == b {
			return true
		}
	}
	return false
}
