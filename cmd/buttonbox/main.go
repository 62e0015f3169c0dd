package main

import (
	"fmt"
	"os"

	"github.com/perceptlab/buttonbox/internal/link"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "buttonbox",
	Short: "buttonbox - experiment controller for the button/LED response panel",
	Long: `buttonbox sequences timed cognitive-task trials on a microcontroller-driven
button panel: it lights buttons in per-trial color patterns over a serial
link, scores presses against a deadline, and gives the operator live
start/next/stop/redo control over the run.`,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	portName string
	baudRate int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&portName, "port", defaultPort(), "Serial port of the panel microcontroller")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", link.DefaultBaud, "Serial baud rate")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(panelCmd)
}

func defaultPort() string {
	if p := os.Getenv("BUTTONBOX_PORT"); p != "" {
		return p
	}
	return "/dev/ttyACM0"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
