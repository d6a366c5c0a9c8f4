package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	configErr error
	rootCmd   = &cobra.Command{
		Use:   "sandpack",
		Short: "Generate Sandpack file manifests for project folders",
		Long: `Sandpack scans every project folder under the projects directory and
writes a files.json manifest into each one. A manifest maps "/path" keys to
{code, hidden} entries that the Sandpack widget loads.

A file is hidden unless it is named App.js or App.jsx, or its first comment
carries a directive such as:
  // sandpack:visible
  /* sandpack:hidden */
  <!-- sandpack:hidden:false -->

Missing /package.json and /index.html entries are synthesized.

Examples:
  sandpack                       # Generate manifests under public/projects
  sandpack -p site/projects      # Use another projects directory
  sandpack -o json               # Print the report as JSON
  sandpack watch                 # Regenerate on change
  sandpack serve                 # Browse projects in the Sandpack viewer
  sandpack history               # View past generation runs`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: initializeLogging,
		RunE:              runGenerate,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sandpack.yaml or ~/.config/sandpack/config.yaml)")
	rootCmd.PersistentFlags().StringP("projects-dir", "p", "", "directory holding one folder per project")
	rootCmd.PersistentFlags().String("output-name", "", "manifest file name written into each project")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "projects generated concurrently")
	rootCmd.PersistentFlags().StringP("output", "o", "", "report format: pretty, plain, json, yaml")
	rootCmd.PersistentFlags().Bool("no-history", false, "do not record the run in history")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	bindFlag("projects_dir", "projects-dir")
	bindFlag("output_name", "output-name")
	bindFlag("exclude", "exclude")
	bindFlag("workers", "workers")
	bindFlag("output", "output")
	bindFlag("no_history", "no-history")
	bindFlag("quiet", "quiet")
	bindFlag("verbose", "verbose")
}

func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// initConfig reads in config file and environment variables.
// A read failure is reported by initializeLogging.
func initConfig() {
	config.Configure(viper.GetViper(), cfgFile)
	configErr = config.Read(viper.GetViper())
}

// loadConfig decodes the merged configuration.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return config.FromViper(viper.GetViper())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(rootCmd.OutOrStdout(), format+"\n", args...)
	}
}
