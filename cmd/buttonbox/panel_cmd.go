package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/perceptlab/buttonbox/internal/link"
	"github.com/perceptlab/buttonbox/internal/models"
	"github.com/perceptlab/buttonbox/internal/protocol"
	"github.com/spf13/cobra"
)

// presetHold is how long each preset trial pattern stays lit.
const presetHold = 2 * time.Second

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Hardware checkout utilities for the LED panel",
}

var panelSetCmd = &cobra.Command{
	Use:   "set <color> [color...]",
	Short: "Light each LED in a named color (fewer names leave the rest off)",
	Long: `Sends a manual color frame to the panel, one color name per LED in
button order. Available colors: ` + colorNames() + `.`,
	Args: cobra.RangeArgs(1, models.NumButtons),
	RunE: runPanelSet,
}

var panelTrialCmd = &cobra.Command{
	Use:   "trial <n> [n...]",
	Short: "Play back preset trial patterns stored in the firmware",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPanelTrial,
}

func init() {
	panelCmd.AddCommand(panelSetCmd)
	panelCmd.AddCommand(panelTrialCmd)
}

func runPanelSet(cmd *cobra.Command, args []string) error {
	frame := make([]protocol.RGB, models.NumButtons)
	for i, name := range args {
		rgb, ok := protocol.Colors[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown color %q (available: %s)", name, colorNames())
		}
		frame[i] = rgb
	}

	ch, err := link.OpenSerial(portName, baudRate)
	if err != nil {
		return fmt.Errorf("connect to panel: %w", err)
	}
	defer ch.Close()

	if err := ch.WriteLine(protocol.ColorFrame(frame)); err != nil {
		return fmt.Errorf("send color frame: %w", err)
	}
	fmt.Printf("Sent color frame for %d LEDs\n", models.NumButtons)
	return nil
}

func runPanelTrial(cmd *cobra.Command, args []string) error {
	trials := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid trial number %q", a)
		}
		trials = append(trials, n)
	}

	ch, err := link.OpenSerial(portName, baudRate)
	if err != nil {
		return fmt.Errorf("connect to panel: %w", err)
	}
	defer ch.Close()

	for _, n := range trials {
		if err := ch.WriteLine(protocol.PresetTrial(n)); err != nil {
			return fmt.Errorf("send trial %d: %w", n, err)
		}
		fmt.Printf("Sent: TRIAL %d\n", n)
		time.Sleep(presetHold)
	}
	return nil
}

func colorNames() string {
	names := make([]string, 0, len(protocol.Colors))
	for name := range protocol.Colors {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
