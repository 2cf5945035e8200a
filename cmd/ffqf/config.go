package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nishad/ffqf/internal/config"
	"github.com/nishad/ffqf/internal/paths"
)

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ffqf configuration",
		Long:  `Manage the ffqf configuration file and inspect the effective settings.`,
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Display the configuration after applying the configuration file, the .env
file, FFQF_* environment variables and command line flags. The NCBI API key
is redacted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Create a default configuration file in the appropriate location.

If a config file already exists, use --force to overwrite it.`,
		Example: `  # Create default config with your email
  ffqf config init --email you@example.org

  # Force overwrite existing config
  ffqf config init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, opts)
		},
	}
	configInitCmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite existing configuration")

	configPathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "Show configuration paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPaths(cmd, opts)
		},
	}

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathsCmd)

	return configCmd
}

func configPath(opts *options) string {
	if opts.configPath != "" {
		return paths.ExpandHome(opts.configPath)
	}
	return paths.GetConfigPath()
}

func runConfigShow(cmd *cobra.Command, opts *options) error {
	cfg, err := layerConfig(opts)
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()

	// Show the settings even when they are not usable yet.
	invalid := cfg.Validate()

	if cfg.NCBI.APIKey != "" {
		cfg.NCBI.APIKey = "********"
	}

	out := cmd.OutOrStdout()
	path := configPath(opts)
	fmt.Fprintf(out, "%s %s\n", colorize(out, colorBold, "Config File:"), path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, colorize(out, colorYellow, "  (using defaults - no config file found)"))
	}
	fmt.Fprintln(out)

	// Marshal config to YAML for display
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}

	if _, err := out.Write(data); err != nil {
		return err
	}

	if invalid != nil {
		printWarning(cmd.ErrOrStderr(), "Configuration is incomplete: %v", invalid)
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, opts *options) error {
	path := configPath(opts)
	out := cmd.OutOrStdout()

	// Check if config exists
	if _, err := os.Stat(path); err == nil && !opts.force {
		printWarning(out, "Configuration already exists at %s", path)
		fmt.Fprintln(out, "Use --force to overwrite")
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.NCBI.Email = opts.email

	if err := cfg.Save(path); err != nil {
		return err
	}

	printSuccess(out, "Configuration created at %s", path)

	return nil
}

func runConfigPaths(cmd *cobra.Command, opts *options) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s\n", colorize(out, colorBold, "Paths:"))
	fmt.Fprintf(out, "  Config dir:  %s\n", colorize(out, colorCyan, paths.GetPaths().ConfigDir))
	fmt.Fprintf(out, "  Config file: %s\n", colorize(out, colorCyan, configPath(opts)))

	envVars := []string{"FFQF_CONFIG_HOME", "FFQF_CONFIG", "XDG_CONFIG_HOME"}
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "  %s = %s\n", colorize(out, colorYellow, name), colorize(out, colorGray, val))
		}
	}

	return nil
}
