package cmd

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fragmede/habrscore/internal/ui"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <url|file>",
		Short: "Browse an article's comments and filter them by score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			l, err := e.layoutFor(args[0])
			if err != nil {
				return err
			}
			e.logger.Info("starting view", slog.String("target", args[0]), slog.String("layout", string(l.Variant)))

			app := ui.NewApp(e.cfg, e.loader, args[0], l, e.logger)
			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}
