package main

import (
	"bytes"
	"fmt"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/config"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/output"
	"github.com/spf13/cobra"
)

var genCmd = &cobra.Command{
	Use:     "gen",
	Aliases: []string{"generate"},
	Short:   "Generate manifests for every project (default command)",
	Long: `Walk every project folder under the projects directory and write its
manifest. Projects that fail are reported and skipped; the command exits
non-zero if any project failed or the projects directory is missing.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(genCmd)
}

// newGenerator builds a generator from the configuration.
func newGenerator(cfg *config.Config, recorder generator.Recorder) (*generator.Generator, error) {
	return generator.New(generator.Options{
		Root:       cfg.ProjectsDir,
		OutputName: cfg.OutputName,
		Exclude:    cfg.Exclude,
		Workers:    cfg.Workers,
		Recorder:   recorder,
	})
}

// runGenerate generates all manifests and prints the report.
func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := output.Get(cfg.Output)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, output.Available())
	}

	var recorder generator.Recorder
	if store := openHistory(cfg); store != nil {
		defer store.Close()
		recorder = store
	}

	gen, err := newGenerator(cfg, recorder)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	report, genErr := gen.Generate(ctx)
	if report != nil && !getQuiet() {
		if err := printReport(cmd, formatter, report); err != nil {
			return err
		}
	}
	if genErr != nil && report != nil {
		return fmt.Errorf("%d of %d projects failed", report.Failed(), len(report.Projects))
	}
	return genErr
}

func printReport(cmd *cobra.Command, formatter output.Formatter, report *generator.Report) error {
	var buf bytes.Buffer
	if err := formatter.Format(&buf, report); err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	_, err := buf.WriteTo(cmd.OutOrStdout())
	return err
}
