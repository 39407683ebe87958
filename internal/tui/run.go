package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/stockroom/internal/common"
	tea "github.com/charmbracelet/bubbletea"
)

// New creates a dashboard model. A dispatcher is required.
func New(ctx context.Context, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Dispatcher == nil {
		return Model{}, fmt.Errorf("%w: dashboard dispatcher is required", common.ErrMissingConfig)
	}

	return newModel(ctx, cfg), nil
}

// Run creates the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts ...Option) error {
	m, err := New(ctx, opts...)
	if err != nil {
		return err
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		// Cancelling ctx kills the program; that is a normal shutdown.
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
