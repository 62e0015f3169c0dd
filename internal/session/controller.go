package session

import (
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/perceptlab/buttonbox/internal/link"
	"github.com/perceptlab/buttonbox/internal/models"
	"github.com/perceptlab/buttonbox/internal/sequence"
)

// Controller owns the run-level state machine. Control signals arrive from
// the dispatch context (the UI layer); the condition/trial loop runs on a
// single worker goroutine that also owns all channel I/O. Signals that are
// invalid for the current state are ignored rather than raised: the
// controller is an operator-facing live control, not a strict protocol.
type Controller struct {
	cfg     *Config
	ch      link.Channel
	display Display
	confirm Confirmer
	cue     Cue
	rng     *rand.Rand

	// cancel is the stop flag handed to the worker. Written by the dispatch
	// context, read at poll ticks and trial boundaries.
	cancel atomic.Bool

	mu       sync.Mutex
	state    models.State
	run      *models.Run
	outcomes []models.TrialOutcome
	// busy is the single-slot worker guard: only one worker task may exist.
	busy bool
}

// NewController wires the orchestration core to its collaborators.
func NewController(cfg *Config, ch link.Channel, display Display, confirm Confirmer, cue Cue, rng *rand.Rand) *Controller {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Controller{
		cfg:     cfg,
		ch:      ch,
		display: display,
		confirm: confirm,
		cue:     cue,
		rng:     rng,
		state:   models.StateIdle,
	}
}

// State returns the current controller state.
func (c *Controller) State() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Outcomes returns a copy of every trial outcome recorded this session.
func (c *Controller) Outcomes() []models.TrialOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.TrialOutcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

// Pending returns the names of conditions not yet consumed, in canonical
// order.
func (c *Controller) Pending() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return nil
	}
	out := make([]string, len(c.run.Pending))
	copy(out, c.run.Pending)
	return out
}

// Start begins a new run. Valid from Idle or Done; a no-op otherwise.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.busy || (c.state != models.StateIdle && c.state != models.StateDone) {
		c.mu.Unlock()
		return
	}
	c.busy = true
	c.state = models.StatePriming
	c.cancel.Store(false)
	c.outcomes = nil
	c.mu.Unlock()

	log.Println("session: starting new run")
	go c.runStart()
}

// Next advances to the next remaining canonical condition, or ends the run
// when none remain. Valid only while awaiting advance; a no-op otherwise.
func (c *Controller) Next() {
	c.mu.Lock()
	if c.busy || c.state != models.StateAwaitingAdvance || c.run == nil {
		c.mu.Unlock()
		return
	}
	if c.run.Override == "" && len(c.run.Pending) == 0 {
		c.finishLocked()
		c.mu.Unlock()
		return
	}
	c.busy = true
	c.state = models.StateRunningCondition
	c.mu.Unlock()

	go c.runCurrent()
}

// Stop signals the worker to abandon the running condition at the next trial
// boundary. The condition is not marked complete and is re-run from its
// first trial on the next advance.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != models.StateRunningCondition {
		return
	}
	log.Println("session: stop requested")
	c.cancel.Store(true)
}

// Redo re-runs the most recently executed condition out of canonical order,
// after operator confirmation.
func (c *Controller) Redo() {
	c.mu.Lock()
	if c.run == nil || c.run.LastRun == "" {
		c.mu.Unlock()
		return
	}
	name := c.run.LastRun
	c.mu.Unlock()

	c.Override(name)
}

// Override runs the named condition out of canonical order, after operator
// confirmation. The canonical queue position is untouched; on completion one
// pending occurrence of the name, if any, is consumed so the condition does
// not run twice. Unknown names are rejected as no-ops.
func (c *Controller) Override(name string) {
	c.mu.Lock()
	if c.busy || c.state != models.StateAwaitingAdvance || c.run == nil || c.run.Find(name) == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// Confirmation blocks on the operator; the lock cannot be held across it.
	if !c.confirm.ConfirmOverride(name) {
		log.Printf("session: override of %q declined", name)
		return
	}

	c.mu.Lock()
	// Re-validate: the state may have moved while the prompt was open.
	if c.busy || c.state != models.StateAwaitingAdvance || c.run == nil {
		c.mu.Unlock()
		return
	}
	c.run.Override = name
	c.busy = true
	c.state = models.StateRunningCondition
	c.mu.Unlock()

	log.Printf("session: override accepted for %q", name)
	go c.runCurrent()
}

// runStart primes the session, builds the condition roster, and runs the
// first canonical condition. Worker goroutine.
func (c *Controller) runStart() {
	c.display.ClearStatus()
	c.display.SetControls(models.Controls{})
	c.display.ShowMessage("Get ready…")

	time.Sleep(c.cfg.PrimingDelay)
	c.cue.Signal()

	builder := sequence.New(c.rng)
	conditions, err := builder.Build()
	if err != nil {
		c.fail(err)
		return
	}

	run := &models.Run{
		ID:         uuid.New().String(),
		Conditions: conditions,
		Pending:    make([]string, 0, len(conditions)),
		StartedAt:  time.Now(),
	}
	for _, cond := range conditions {
		run.Pending = append(run.Pending, cond.Name)
	}

	c.mu.Lock()
	c.run = run
	c.mu.Unlock()

	log.Printf("session: run %s built with %d conditions", run.ID, len(conditions))
	c.display.SetConditions(run.Pending)

	c.runCurrent()
}

// runCurrent executes the override condition if one is requested, otherwise
// the head of the canonical queue, then settles the post-condition state.
// Worker goroutine; c.busy is held.
func (c *Controller) runCurrent() {
	c.mu.Lock()
	run := c.run

	var name string
	repeat := false
	switch {
	case run.Override != "":
		name = run.Override
		repeat = true
	case len(run.Pending) > 0:
		name = run.Pending[0]
	default:
		c.finishLocked()
		c.mu.Unlock()
		return
	}

	cond := run.Find(name)
	c.state = models.StateRunningCondition
	c.mu.Unlock()

	log.Printf("session: running condition %q (repeat=%v)", name, repeat)
	c.display.ShowMessage("")
	c.display.SetControls(models.Controls{Stop: true})

	runner := NewTrialRunner(c.ch, c.display, c.cfg, c.rng, c.cancel.Load)
	completed, outcomes, err := runner.Run(cond, repeat)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A stop signal landing after the last trial must not leak into the
	// next condition.
	c.cancel.Store(false)

	c.outcomes = append(c.outcomes, outcomes...)
	run.LastRun = name
	run.Override = ""

	if err != nil {
		c.failLocked(err)
		return
	}

	if !completed {
		log.Printf("session: condition %q stopped after %d trials", name, len(outcomes))
		c.state = models.StateConditionStopped
		c.awaitAdvanceLocked()
		return
	}

	run.ConsumePending(name)
	log.Printf("session: condition %q complete (%d pending)", name, len(run.Pending))
	c.cue.Signal()
	c.state = models.StateConditionComplete
	c.awaitAdvanceLocked()
}

// awaitAdvanceLocked parks the controller until the operator advances.
func (c *Controller) awaitAdvanceLocked() {
	c.state = models.StateAwaitingAdvance
	c.busy = false
	c.display.ClearStatus()
	c.display.SetControls(models.Controls{Next: true, Redo: true})
}

// finishLocked ends the run after the canonical queue is exhausted.
func (c *Controller) finishLocked() {
	log.Printf("session: run %s complete", c.run.ID)
	c.cue.Signal()
	c.state = models.StateDone
	c.busy = false
	c.display.ClearStatus()
	c.display.ShowMessage("Session complete")
	c.display.SetControls(models.Controls{Start: true})
}

// fail halts the session on a transport failure. No reconnect is attempted;
// the operator gets the error and the start control back.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(err)
}

func (c *Controller) failLocked(err error) {
	log.Printf("session: fatal: %v", err)
	c.cancel.Store(false)
	c.state = models.StateDone
	c.busy = false
	c.run = nil
	c.display.ShowMessage("Session halted: " + err.Error())
	c.display.SetControls(models.Controls{Start: true})
}
