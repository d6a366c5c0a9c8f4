package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sandpack configuration settings.

Configuration is loaded from the first of:
  1. the --config flag
  2. ./sandpack.yaml
  3. $XDG_CONFIG_HOME/sandpack/config.yaml

Environment variables override file settings using the SANDPACK_ prefix:
  SANDPACK_PROJECTS_DIR=site/projects
  SANDPACK_SERVE_ADDR=:3000
  SANDPACK_HISTORY_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the merged configuration from all sources.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", used)
	} else {
		fmt.Fprintf(w, "Config file: (using defaults, no file found)\n\n")
	}

	data, err := yaml.Marshal(configView(cfg))
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprint(w, string(data))

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	overrides := envOverrides(os.Environ())
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}

	return nil
}

// configView mirrors the config file layout for display.
func configView(cfg *config.Config) map[string]any {
	return map[string]any{
		"projects_dir": cfg.ProjectsDir,
		"output_name":  cfg.OutputName,
		"exclude":      cfg.Exclude,
		"workers":      cfg.Workers,
		"output":       cfg.Output,
		"serve": map[string]any{
			"addr":              cfg.Serve.Addr,
			"public_dir":        cfg.Serve.PublicDir,
			"base_path":         cfg.Serve.BasePath,
			"manifest_base_url": cfg.Serve.ManifestBaseURL,
			"title":             cfg.Serve.Title,
			"titles":            cfg.Serve.Titles,
			"fetch_timeout":     cfg.Serve.FetchTimeout.String(),
		},
		"watch": map[string]any{
			"debounce": cfg.Watch.Debounce.String(),
		},
		"history": map[string]any{
			"enabled":        cfg.History.Enabled,
			"path":           cfg.History.Path,
			"retention_days": cfg.History.RetentionDays,
		},
		"logging": map[string]any{
			"level":      cfg.Logging.Level,
			"path":       cfg.Logging.Path,
			"components": cfg.Logging.Components,
		},
	}
}

// envOverrides returns the sorted SANDPACK_ variables in environ.
func envOverrides(environ []string) []string {
	var out []string
	for _, kv := range environ {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigPath()

	created, err := config.WriteDefault(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !created {
		printInfo("Config file already exists: %s", path)
		return nil
	}

	printInfo("Created default config file: %s", path)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path := viper.ConfigFileUsed()
	if path == "" {
		path = config.ConfigPath()
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debug("config file does not exist, defaults in use", "path", path)
	}
	return nil
}
