package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/perceptlab/buttonbox/internal/models"
)

// errPortGone simulates a transport-level failure.
var errPortGone = fmt.Errorf("serial port disconnected")

// fastConfig keeps the tests well under a second.
func fastConfig() *Config {
	return &Config{
		PressDeadline:   50 * time.Millisecond,
		PollInterval:    time.Millisecond,
		InterTrialPause: time.Millisecond,
		PrimingDelay:    time.Millisecond,
	}
}

// fakeChannel implements link.Channel with scripted inbound lines and an
// optional auto-responder keyed on outbound commands.
type fakeChannel struct {
	mu      sync.Mutex
	inbound []string
	writes  []string
	readErr error
	// respond, when set, queues inbound lines in reaction to each write.
	respond func(cmd string) []string
}

func (f *fakeChannel) WriteLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, line)
	if f.respond != nil {
		f.inbound = append(f.inbound, f.respond(line)...)
	}
	return nil
}

func (f *fakeChannel) ReadLine() (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", false, f.readErr
	}
	if len(f.inbound) == 0 {
		return "", false, nil
	}
	line := f.inbound[0]
	f.inbound = f.inbound[1:]
	return line, true, nil
}

func (f *fakeChannel) Close() error { return nil }

func (f *fakeChannel) queue(lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, lines...)
}

func (f *fakeChannel) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	copy(out, f.writes)
	return out
}

// targetOf extracts the target index from an outbound command line. For the
// Only* commands the target is the last button in the list.
func targetOf(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) != 2 {
		return ""
	}
	parts := strings.Split(fields[1], ",")
	return parts[len(parts)-1]
}

// pressTarget auto-responds to every command with a press of its target.
func pressTarget(cmd string) []string {
	if t := targetOf(cmd); t != "" {
		return []string{"PRESSED " + t}
	}
	return nil
}

// fakeDisplay records every status surface update.
type fakeDisplay struct {
	mu         sync.Mutex
	statuses   []models.Status
	controls   []models.Controls
	conditions []string
	messages   []string
	clears     int
}

func (d *fakeDisplay) ShowStatus(s models.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, s)
}

func (d *fakeDisplay) ClearStatus() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
}

func (d *fakeDisplay) SetControls(c models.Controls) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controls = append(d.controls, c)
}

func (d *fakeDisplay) SetConditions(names []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conditions = append([]string(nil), names...)
}

func (d *fakeDisplay) ShowMessage(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *fakeDisplay) allStatuses() []models.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Status, len(d.statuses))
	copy(out, d.statuses)
	return out
}

func (d *fakeDisplay) lastControls() models.Controls {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.controls) == 0 {
		return models.Controls{}
	}
	return d.controls[len(d.controls)-1]
}

// fakeConfirmer answers override prompts with a fixed reply.
type fakeConfirmer struct {
	mu     sync.Mutex
	answer bool
	asked  []string
}

func (c *fakeConfirmer) ConfirmOverride(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, name)
	return c.answer
}

// fakeCue counts signals.
type fakeCue struct {
	mu    sync.Mutex
	count int
}

func (c *fakeCue) Signal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *fakeCue) signals() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
