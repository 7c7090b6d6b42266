package cli

import (
	"fmt"

	"github.com/andy/facturas/internal/logger"
	"github.com/andy/facturas/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long:  `Launch the interactive terminal user interface for facturas.`,
	RunE:  launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent(logger.ComponentTUI)
	log.Info().Str("base_url", appInstance.Client.BaseURL()).Msg("starting TUI")

	p := tea.NewProgram(tui.NewModel(appInstance), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("TUI exited with error")
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
