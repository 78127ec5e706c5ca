package main

import (
	"fmt"

	"obscount/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the counter in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTUICmd,
	}
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := openLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	repo := openRepository(cfg, nil, logger)
	controller := newController(cfg, repo, logger)
	defer controller.Close()
	controller.Load()

	model := tui.New(tui.Options{
		Controller: controller,
		Events:     controller.SubscribeTimer(8),
		ExportDir:  cfg.Export.Dir,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
