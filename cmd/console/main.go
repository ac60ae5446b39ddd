package main

import (
	"flag"
	"fmt"
	"os"

	"bugtracker/cmd/console/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	baseURL := flag.String("url", "http://127.0.0.1:8000", "Bug tracker API base URL")
	flag.Parse()

	p := tea.NewProgram(ui.NewRootModel(ui.NewClient(*baseURL)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "console:", err)
		os.Exit(1)
	}
}
