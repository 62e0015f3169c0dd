package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/perceptlab/buttonbox/internal/link"
	"github.com/perceptlab/buttonbox/internal/session"
	"github.com/perceptlab/buttonbox/internal/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an experiment session with the interactive console",
	RunE:  runSession,
}

func runSession(cmd *cobra.Command, args []string) error {
	// The console owns the terminal, so session logs go to a file.
	if f, err := openSessionLog(); err == nil {
		defer f.Close()
		log.SetOutput(f)
	}

	ch, err := link.OpenSerial(portName, baudRate)
	if err != nil {
		return fmt.Errorf("connect to panel: %w", err)
	}
	defer ch.Close()

	console := tui.NewConsole()
	app := tui.New(console)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctrl := session.NewController(session.DefaultConfig(), ch, console, console, console, rng)
	app.SetController(ctrl)

	if err := app.Run(); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	// Session-level summary for the operator after the console closes.
	outcomes := ctrl.Outcomes()
	hits := 0
	for _, o := range outcomes {
		if o.Pressed && o.Button == o.Target {
			hits++
		}
	}
	if len(outcomes) > 0 {
		fmt.Printf("Session: %d trials, %d hits, %d misses\n", len(outcomes), hits, len(outcomes)-hits)
	}
	return nil
}

func openSessionLog() (*os.File, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(homeDir, ".buttonbox")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "session.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
