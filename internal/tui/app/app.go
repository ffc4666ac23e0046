// Package app provides TUI application adapters for command wiring.
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/tui/state"
)

// ProgramRunner defines the interface for running a bubbletea program.
type ProgramRunner interface {
	// Run starts the bubbletea program with the given model.
	Run(model tea.Model) error
}

// DefaultProgramRunner wraps tea.NewProgram with the alternate screen.
type DefaultProgramRunner struct{}

// NewDefaultProgramRunner creates a new DefaultProgramRunner.
func NewDefaultProgramRunner() *DefaultProgramRunner {
	return &DefaultProgramRunner{}
}

// Run starts a bubbletea program with the given model.
func (r *DefaultProgramRunner) Run(model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Client builds and runs the notifications view.
type Client struct {
	runner ProgramRunner
}

// NewClient returns a Client. A nil runner uses DefaultProgramRunner.
func NewClient(runner ProgramRunner) *Client {
	if runner == nil {
		runner = NewDefaultProgramRunner()
	}
	return &Client{runner: runner}
}

// Run shows the view for ctrl until the user quits.
func (c *Client) Run(ctrl state.Controller, opts ...state.Option) error {
	model := state.NewModel(ctrl, opts...)
	if err := c.runner.Run(model); err != nil {
		colors.Error(fmt.Sprintf("Error running TUI: %v", err))
		return err
	}
	return nil
}
