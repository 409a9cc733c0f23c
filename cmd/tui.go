package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for a replay.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	op, err := models.ParseOperation(cmd.String("op"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	// Logs go to a file so they don't interfere with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	src, err := r.sourceLibrary()
	if err != nil {
		return err
	}
	dst, err := r.destinationLibrary()
	if err != nil {
		return err
	}

	engine, closeDB := r.newEngine(true)
	defer closeDB()

	model := ui.NewModel(ctx, engine, src, dst, ui.Settings{
		Operation: op,
		BatchSize: r.config.Transfer.DeleteBatchSize,
		Delay:     r.config.Transfer.DelayDuration(),
		DryRun:    r.config.Transfer.Testing,
		Fetch:     r.fetchOpts(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
