package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"obscount/internal/app"
	"obscount/internal/config"
	"obscount/internal/core/timekeeper"
	"obscount/internal/storage"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"
)

const appID = "io.github.obscount"

func execute() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "obscount",
		Short:         "Count observations in timed recording sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGUICmd,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")

	rootCmd.AddCommand(newGUICmd())
	rootCmd.AddCommand(newTUICmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		resolved, err := config.Path()
		if err != nil {
			return config.Config{}, "", err
		}
		configPath = resolved
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, configPath, fmt.Errorf("load config %s: %w", configPath, err)
	}
	return cfg, configPath, nil
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// openLogFile opens the log file used while a full-screen front end owns
// the terminal.
func openLogFile() (*os.File, error) {
	configDir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(configDir, config.AppName+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// openStore picks the key-value store for the configured backend. The
// preferences backend needs a running Fyne app; without one the file
// store is used instead.
func openStore(cfg config.Config, fyneApp fyne.App, logger *slog.Logger) storage.Store {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory storage, records will not survive restart")
		return storage.NewMemoryStore()
	case config.BackendPreferences:
		if fyneApp != nil {
			return storage.NewPreferencesStore(fyneApp.Preferences())
		}
		logger.Warn("preferences storage needs the desktop app, falling back to files", "dir", cfg.Storage.Dir)
	}
	return storage.NewFileStore(cfg.Storage.Dir)
}

func openRepository(cfg config.Config, fyneApp fyne.App, logger *slog.Logger) *storage.Repository {
	store := openStore(cfg, fyneApp, logger)
	repo := storage.NewRepository(store, storage.KeysWithPrefix(cfg.Storage.KeyPrefix))
	if !repo.Available() {
		logger.Warn("storage probe failed", "backend", cfg.Storage.Backend, "error", repo.ProbeError())
	}
	return repo
}

func newController(cfg config.Config, repo *storage.Repository, logger *slog.Logger) *app.Controller {
	return app.New(app.Options{
		Repository: repo,
		Settings:   cfg.TimerSettings(),
		Timer:      timekeeper.Config{TickInterval: time.Second},
		Location:   time.Local,
		Logger:     logger,
	})
}
