package main

import (
	"fmt"
	"path/filepath"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/manifest"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/output"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/viewer"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <project>",
	Short: "Show a project's manifest as a tree",
	Long: `Print the entries of a generated manifest as a directory tree.
Entries the Sandpack widget hides are marked (hidden).`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := viewer.ValidateID(id); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.ProjectsDir, id, cfg.OutputName)
	m, err := manifest.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), output.ManifestTree(id, m))
	printInfo("%d entries, %d hidden", len(m), m.HiddenCount())
	return nil
}
