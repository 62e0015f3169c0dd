// Package session implements the experiment orchestration core: the run
// state machine, trial execution, and timeout-bound press detection.
package session

import "time"

// Config defines the session timing parameters.
type Config struct {
	// PressDeadline is how long a trial waits for the target press.
	PressDeadline time.Duration
	// PollInterval is the pause between channel polls while waiting.
	PollInterval time.Duration
	// InterTrialPause is the fixed delay after a trial resolves.
	InterTrialPause time.Duration
	// PrimingDelay is the settle period between the ready cue and the
	// start of the first condition.
	PrimingDelay time.Duration
}

// DefaultConfig returns the timing used on the physical testbed.
func DefaultConfig() *Config {
	return &Config{
		PressDeadline:   10 * time.Second,
		PollInterval:    10 * time.Millisecond,
		InterTrialPause: 3 * time.Second,
		PrimingDelay:    2 * time.Second,
	}
}
