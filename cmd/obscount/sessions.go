package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"obscount/internal/app"
	"obscount/internal/core/model"
	"obscount/internal/export"
	"obscount/internal/storage"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	repo := openRepository(cfg, nil, logger)

	sessions, err := loadSessions(repo)
	if err != nil {
		return err
	}
	printSessionsTable(cmd.OutOrStdout(), sessions, time.Local)
	return nil
}

func loadSessions(repo *storage.Repository) ([]model.Session, error) {
	if !repo.Available() {
		return nil, fmt.Errorf("storage unavailable: %w", repo.ProbeError())
	}
	sessions, err := repo.LoadSessions()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return sessions, err
}

func printSessionsTable(w io.Writer, sessions []model.Session, loc *time.Location) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, styleDim.Render("No sessions saved yet."))
		return
	}

	names := export.Columns(sessions)
	headers := append([]string{"DATE", "DURATION"}, names...)
	headers = append(headers, "TOTAL")

	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		row := []string{
			app.FormatTimestamp(session.Timestamp, loc),
			app.FormatDuration(session.Duration),
		}
		for _, name := range names {
			count, ok := session.Count(name)
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, strconv.Itoa(count))
		}
		row = append(row, strconv.Itoa(session.Total()))
		rows = append(rows, row)
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader.PaddingRight(2)
			}
			return styleTableCell
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("%d sessions", len(sessions))))
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write saved sessions to a CSV file",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().String("dir", "", "directory to write the CSV file into (default from config)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Export.Dir
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	path, err := exportSessions(openRepository(cfg, nil, logger), dir, time.Now(), time.Local, logger)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), styleDim.Render("No sessions to export."))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Exported to "+path))
	return nil
}

func exportSessions(repo *storage.Repository, dir string, now time.Time, loc *time.Location, logger *slog.Logger) (string, error) {
	sessions, err := loadSessions(repo)
	if err != nil {
		return "", err
	}
	path, err := export.WriteFile(dir, sessions, now, loc)
	if err != nil {
		return "", err
	}
	if path != "" {
		logger.Info("sessions exported", "path", path, "sessions", len(sessions))
	}
	return path, nil
}
