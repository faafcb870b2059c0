// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/medkit/internal/config"
)

// newConfigCommand creates the `medkit config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage medkit configuration",
		Long: `Manage medkit configuration.

Configuration is stored in:
  - Linux: ~/.config/medkit/config.cue
  - macOS: ~/Library/Application Support/medkit/config.cue
  - Windows: %APPDATA%\medkit\config.cue

Every value can be overridden with a MEDKIT_* environment variable,
e.g. MEDKIT_STORAGE_BACKEND=sqlite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig(app.configDir)
			if err != nil {
				return app.fail(err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration and data paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, cfgPath, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if cfgPath != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	dataPath, err := cfg.StoragePath()
	if err != nil {
		return app.fail(err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("storage"))
	fmt.Fprintf(out, "  backend: %s\n", valueStyle.Render(cfg.Storage.Backend.String()))
	fmt.Fprintf(out, "  path: %s\n", valueStyle.Render(dataPath))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("report"))
	fmt.Fprintf(out, "  expiring_within_days: %s\n", valueStyle.Render(fmt.Sprintf("%d", cfg.Report.ExpiringWithinDays)))
	fmt.Fprintf(out, "  low_stock_ratio: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Report.LowStockRatio)))

	return nil
}

func showConfigPath(ctx context.Context, app *App) error {
	cfgDir := app.configDir
	if cfgDir == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return app.fail(err)
		}
		cfgDir = dir
	}
	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	cfg, _, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(err)
	}
	dataPath, err := cfg.StoragePath()
	if err != nil {
		return app.fail(err)
	}
	fmt.Fprintf(app.stdout, "Data file: %s\n", dataPath)
	return nil
}
