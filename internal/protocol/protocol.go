// Package protocol implements the line-based wire protocol spoken to the
// panel microcontroller. Commands and events are newline-terminated text,
// one per line. Button indices on the wire are 0-based.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/perceptlab/buttonbox/internal/models"
)

// pressPrefix begins every inbound press report.
const pressPrefix = "PRESSED"

// ErrNotPress indicates a line that is not a press report. Such lines are
// discarded by callers, not treated as failures.
var ErrNotPress = fmt.Errorf("not a press report")

// GoBlue encodes the command lighting a single button blue.
func GoBlue(target models.ButtonIndex) string {
	return fmt.Sprintf("GO_BLUE %d", target)
}

// StopRed encodes the command lighting a single button red.
func StopRed(target models.ButtonIndex) string {
	return fmt.Sprintf("STOP_RED %d", target)
}

// OnlyBlue encodes the command lighting the target blue and the remaining
// buttons red. Wire order is distractors first, target last.
func OnlyBlue(buttons []models.ButtonIndex) string {
	return "ONLY_BLUE " + joinButtons(buttons)
}

// OnlyRed encodes the command lighting the target red and the remaining
// buttons blue. Wire order is distractors first, target last.
func OnlyRed(buttons []models.ButtonIndex) string {
	return "ONLY_RED " + joinButtons(buttons)
}

// Command encodes the trial command for a resolved assignment.
func Command(p models.Pattern, a models.Assignment) string {
	switch p {
	case models.PatternGoBlue:
		return GoBlue(a.Target)
	case models.PatternStopRed:
		return StopRed(a.Target)
	case models.PatternOnlyBlue:
		return OnlyBlue(a.Lit)
	case models.PatternOnlyRed:
		return OnlyRed(a.Lit)
	default:
		return ""
	}
}

// RGB is one LED color in the manual color-frame command.
type RGB struct {
	R, G, B uint8
}

// Colors maps operator color names to RGB values for the checkout command.
var Colors = map[string]RGB{
	"off":    {0, 0, 0},
	"red":    {255, 0, 0},
	"orange": {255, 165, 0},
	"yellow": {255, 255, 0},
	"green":  {0, 255, 0},
	"blue":   {0, 0, 255},
	"purple": {128, 0, 128},
	"pink":   {255, 192, 203},
}

// ColorFrame encodes the manual color command: "C" followed by one r,g,b
// triple per LED, all comma-separated.
func ColorFrame(colors []RGB) string {
	var b strings.Builder
	b.WriteString("C")
	for _, c := range colors {
		fmt.Fprintf(&b, ",%d,%d,%d", c.R, c.G, c.B)
	}
	return b.String()
}

// PresetTrial encodes the preset-trial checkout command.
func PresetTrial(n int) string {
	return fmt.Sprintf("TRIAL %d", n)
}

// ParsePress parses an inbound line as a press report. Lines that do not
// start with the press prefix, or that carry a malformed or out-of-range
// index, return ErrNotPress.
func ParsePress(line string) (models.ButtonIndex, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 2 || fields[0] != pressPrefix {
		return 0, ErrNotPress
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, ErrNotPress
	}
	idx := models.ButtonIndex(n)
	if !idx.Valid() {
		return 0, ErrNotPress
	}
	return idx, nil
}

func joinButtons(buttons []models.ButtonIndex) string {
	parts := make([]string, len(buttons))
	for i, b := range buttons {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ",")
}
