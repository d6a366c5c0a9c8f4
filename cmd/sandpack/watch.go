package main

import (
	"fmt"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/output"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate manifests when project files change",
	Long: `Generate every manifest once, then watch the projects directory and
regenerate the projects whose files change. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", 0, "quiet period before regenerating (default 300ms)")
	_ = viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(watchCmd)
}

// runWatch regenerates manifests until interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
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

	w, err := watch.New(gen, watch.Options{
		Debounce: cfg.Watch.Debounce,
		OnReport: func(report *generator.Report, _ error) {
			if report == nil || getQuiet() {
				return
			}
			if err := printReport(cmd, formatter, report); err != nil {
				logger.Warn("failed to print report", "error", err)
			}
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return w.Run(ctx)
}
