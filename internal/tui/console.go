// Package tui provides the interactive operator console for buttonbox.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/perceptlab/buttonbox/internal/models"
	"github.com/perceptlab/buttonbox/internal/session"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")
	blueColor    = lipgloss.Color("#3B82F6")
	redColor     = lipgloss.Color("#EF4444")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	fixationStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(fgColor).
			Padding(1, 4)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(0, 2)
)

// Messages published by the Console adapter.
type statusMsg struct {
	status  models.Status
	present bool
}
type controlsMsg models.Controls
type conditionsMsg []string
type messageMsg string
type confirmMsg struct {
	name  string
	reply chan bool
}
type cueMsg struct{}

// App is the operator console model.
type App struct {
	console *Console
	ctrl    *session.Controller

	status     models.Status
	hasStatus  bool
	controls   models.Controls
	conditions []string
	message    string

	// picking is true while the override condition picker is open.
	picking bool
	pickIdx int

	// confirm holds the pending yes/no prompt, nil when none.
	confirm *confirmMsg

	logView viewport.Model
	logs    []string
	width   int
	height  int
}

// New creates the console application. The controller is wired afterwards
// via SetController because the controller needs the console's collaborator
// interfaces first.
func New(console *Console) *App {
	vp := viewport.New(80, 8)
	return &App{
		console: console,
		logView: vp,
	}
}

// SetController wires the session controller driven by the key bindings.
func (a *App) SetController(c *session.Controller) {
	a.ctrl = c
}

// Run starts the console and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	a.console.Attach(p)
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.logView.Width = msg.Width - 4
		a.logView.Height = max(3, msg.Height-16)

	case statusMsg:
		a.status = msg.status
		a.hasStatus = msg.present
		if msg.present {
			a.logf("%s trial %d: %s", msg.status.Condition, msg.status.TrialNum, msg.status.Pattern)
		}

	case controlsMsg:
		a.controls = models.Controls(msg)

	case conditionsMsg:
		a.conditions = []string(msg)
		a.pickIdx = 0

	case messageMsg:
		a.message = string(msg)
		if a.message != "" {
			a.logf("%s", a.message)
		}

	case confirmMsg:
		m := msg
		a.confirm = &m

	case cueMsg:
		a.logf("cue")
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending confirmation captures y/n before anything else.
	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y":
			a.confirm.reply <- true
			a.confirm = nil
		case "n", "N", "esc":
			a.confirm.reply <- false
			a.confirm = nil
		}
		return a, nil
	}

	if a.picking {
		switch msg.String() {
		case "up", "k":
			if a.pickIdx > 0 {
				a.pickIdx--
			}
		case "down", "j":
			if a.pickIdx < len(a.conditions)-1 {
				a.pickIdx++
			}
		case "enter":
			a.picking = false
			name := a.conditions[a.pickIdx]
			// Override blocks on the confirmation prompt, so it must run
			// off the program loop.
			return a, func() tea.Msg {
				a.ctrl.Override(name)
				return nil
			}
		case "esc":
			a.picking = false
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "s":
		if a.ctrl != nil {
			a.ctrl.Start()
		}

	case "n":
		if a.ctrl != nil {
			a.ctrl.Next()
		}

	case "x":
		if a.ctrl != nil {
			a.ctrl.Stop()
		}

	case "r":
		if a.ctrl != nil && a.controls.Redo {
			return a, func() tea.Msg {
				a.ctrl.Redo()
				return nil
			}
		}

	case "o":
		if a.ctrl != nil && a.controls.Redo && len(a.conditions) > 0 {
			a.picking = true
		}
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	header := titleStyle.Render("BUTTONBOX Experiment Console")
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(1, a.width)) + "\n")

	b.WriteString(a.renderStatusPanel() + "\n")

	if a.message != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(warningColor).Render(" "+a.message) + "\n")
	}

	if a.confirm != nil {
		prompt := fmt.Sprintf("Redo condition %q?\nThis will NOT advance the experiment.  (y/n)", a.confirm.name)
		b.WriteString(promptStyle.Render(prompt) + "\n")
	} else if a.picking {
		b.WriteString(a.renderPicker() + "\n")
	}

	a.logView.SetContent(strings.Join(a.logs, "\n"))
	a.logView.GotoBottom()
	b.WriteString(panelStyle.Render(a.logView.View()) + "\n")

	b.WriteString(statusBarStyle.Width(max(1, a.width)).Render(a.controlHints()))
	return b.String()
}

func (a *App) renderStatusPanel() string {
	if !a.hasStatus {
		// Fixation cross between trials and conditions.
		return panelStyle.Render(fixationStyle.Render("+"))
	}

	s := a.status
	name := s.Condition
	if s.Repeat {
		name += " (REPEAT)"
	}

	var buttons []string
	for _, idx := range s.Lit {
		label := fmt.Sprintf("%d", idx.Display())
		style := lipgloss.NewStyle().Foreground(buttonColor(s.Pattern, idx == s.Target))
		if s.HasTarget && idx == s.Target {
			label = "[" + label + "]"
			style = style.Bold(true)
		}
		buttons = append(buttons, style.Render(label))
	}

	lines := []string{
		fmt.Sprintf("Condition: %s", name),
		fmt.Sprintf("Trial:     %d", s.TrialNum),
		fmt.Sprintf("Pattern:   %s", s.Pattern),
		fmt.Sprintf("Active Button(s): %s", strings.Join(buttons, ", ")),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderPicker() string {
	var b strings.Builder
	b.WriteString(" Override condition:\n")
	for i, name := range a.conditions {
		if i == a.pickIdx {
			b.WriteString(selectedStyle.Render("▶ "+name) + "\n")
		} else {
			b.WriteString("   " + name + "\n")
		}
	}
	b.WriteString(helpStyle.Render(" ↑↓:select  Enter:confirm  Esc:cancel"))
	return b.String()
}

func (a *App) controlHints() string {
	hint := func(key, label string, enabled bool) string {
		s := fmt.Sprintf("%s:%s", key, label)
		if !enabled {
			return helpStyle.Render(s)
		}
		return lipgloss.NewStyle().Foreground(successColor).Render(s)
	}
	parts := []string{
		hint("s", "start", a.controls.Start),
		hint("n", "next", a.controls.Next),
		hint("x", "stop", a.controls.Stop),
		hint("r", "redo", a.controls.Redo),
		hint("o", "override", a.controls.Redo),
		hint("q", "quit", true),
	}
	return " " + strings.Join(parts, "  ")
}

func (a *App) logf(format string, args ...interface{}) {
	line := fmt.Sprintf("%s  %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	a.logs = append(a.logs, line)
	if len(a.logs) > 200 {
		a.logs = a.logs[len(a.logs)-200:]
	}
}

// buttonColor mirrors the physical LED color for a lit button.
func buttonColor(p models.Pattern, isTarget bool) lipgloss.Color {
	switch p {
	case models.PatternGoBlue:
		return blueColor
	case models.PatternStopRed:
		return redColor
	case models.PatternOnlyBlue:
		if isTarget {
			return blueColor
		}
		return redColor
	case models.PatternOnlyRed:
		if isTarget {
			return redColor
		}
		return blueColor
	default:
		return mutedColor
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
