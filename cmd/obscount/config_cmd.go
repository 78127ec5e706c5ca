package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"obscount/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE:  runConfigPathCmd,
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE:  runConfigInitCmd,
	}
	initCmd.Flags().Bool("toml", false, "write config.toml instead of config.yaml")
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

func runConfigPathCmd(cmd *cobra.Command, _ []string) error {
	_, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return nil
}

func runConfigInitCmd(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configDir, err := config.Dir()
		if err != nil {
			return err
		}
		name := "config.yaml"
		if asTOML, _ := cmd.Flags().GetBool("toml"); asTOML {
			name = "config.toml"
		}
		configPath = filepath.Join(configDir, name)
	}

	force, _ := cmd.Flags().GetBool("force")
	if err := initConfig(configPath, force); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Wrote "+configPath))
	return nil
}

func initConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check config file: %w", err)
	}
	return config.Save(path, config.Default())
}
