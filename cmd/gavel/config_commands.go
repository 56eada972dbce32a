package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gavel/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the [archive] section to point at your legislature's media site before running gavel.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "config file:         %s\n", ctx.configPath)
			}
			fmt.Fprintf(out, "download_dir:        %s\n", cfg.Paths.DownloadDir)
			fmt.Fprintf(out, "log_dir:             %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "base_url:            %s\n", cfg.Archive.BaseURL)
			fmt.Fprintf(out, "media_url_template:  %s\n", cfg.Archive.MediaURLTemplate)
			fmt.Fprintf(out, "listing_template:    %s\n", cfg.Archive.ListingURLTemplate)
			fmt.Fprintf(out, "skip_existing:       %s\n", yesNo(cfg.Fetch.SkipExisting))
			fmt.Fprintf(out, "keep_partial:        %s\n", yesNo(cfg.Fetch.KeepPartial))
			fmt.Fprintf(out, "transcode:           %s (%s to %s)\n", yesNo(cfg.Transcode.Enabled), cfg.Transcode.Binary, cfg.Transcode.AudioFormat)
			fmt.Fprintf(out, "workers:             %d\n", cfg.Workflow.WorkerCount)
			fmt.Fprintf(out, "reclaim_stale:       %s\n", yesNo(cfg.Workflow.ReclaimStale))
			fmt.Fprintf(out, "log format/level:    %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)
			return nil
		},
	}
}
