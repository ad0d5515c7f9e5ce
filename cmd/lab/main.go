package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/windfall/dialektlab/internal/client"
	"github.com/windfall/dialektlab/internal/logger"
	"github.com/windfall/dialektlab/internal/session"
	"github.com/windfall/dialektlab/internal/tui"
)

func main() {
	serverURL := os.Getenv("LAB_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	// The TUI owns the terminal; session logs go to a file when asked for,
	// otherwise nowhere.
	log := logger.NewNop()
	if logPath := os.Getenv("LAB_LOG_FILE"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			log = zerolog.New(f).With().Timestamp().Logger()
		}
	}

	sess := session.New(client.NewLabClient(serverURL), log)

	p := tea.NewProgram(tui.New(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
