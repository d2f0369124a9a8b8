package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentstation/cognates/pkg/errors"
)

// Run shows m full screen until the user quits or ctx is canceled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, opts...)

	_, err := tea.NewProgram(m, opts...).Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
