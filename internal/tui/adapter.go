package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/perceptlab/buttonbox/internal/models"
)

// Console bridges the session collaborator interfaces onto the running
// bubbletea program. The session worker publishes through Send; the program
// loop owns all rendering.
type Console struct {
	mu   sync.Mutex
	prog *tea.Program
}

// NewConsole creates an unattached console. Attach must be called with the
// running program before a session starts.
func NewConsole() *Console {
	return &Console{}
}

// Attach binds the console to the program that renders it.
func (c *Console) Attach(p *tea.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prog = p
}

func (c *Console) send(msg tea.Msg) {
	c.mu.Lock()
	p := c.prog
	c.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// ShowStatus implements session.Display.
func (c *Console) ShowStatus(s models.Status) {
	c.send(statusMsg{status: s, present: true})
}

// ClearStatus implements session.Display.
func (c *Console) ClearStatus() {
	c.send(statusMsg{})
}

// SetControls implements session.Display.
func (c *Console) SetControls(ctrls models.Controls) {
	c.send(controlsMsg(ctrls))
}

// SetConditions implements session.Display.
func (c *Console) SetConditions(names []string) {
	c.send(conditionsMsg(names))
}

// ShowMessage implements session.Display.
func (c *Console) ShowMessage(msg string) {
	c.send(messageMsg(msg))
}

// ConfirmOverride implements session.Confirmer. It blocks the calling
// dispatch goroutine until the operator answers the prompt.
func (c *Console) ConfirmOverride(name string) bool {
	reply := make(chan bool, 1)
	c.send(confirmMsg{name: name, reply: reply})
	return <-reply
}

// Signal implements session.Cue: terminal bell plus a log entry. The bell
// stands in for the testbed's fixed-pitch beep.
func (c *Console) Signal() {
	fmt.Print("\a")
	c.send(cueMsg{})
}
