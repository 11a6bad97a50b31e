package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive session and blocks until the user quits.
func Run(opts Options) error {
	program := tea.NewProgram(New(opts))
	_, err := program.Run()
	return err
}
