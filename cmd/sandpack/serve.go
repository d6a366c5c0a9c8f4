package main

import (
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/config"
	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/viewer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project viewer",
	Long: `Serve an index of the projects and a page per project that opens its
manifest in the Sandpack widget. Manifests are served from
<public_dir>/projects without caching.

Examples:
  sandpack serve                              # http://127.0.0.1:8080/
  sandpack serve --addr :3000 --base-path /yc_react_sandpack/
  sandpack serve --manifest-base-url https://example.com/yc_react_sandpack/`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().String("public-dir", "", "static root holding the projects folder")
	serveCmd.Flags().String("base-path", "", "URL prefix the viewer is mounted under")
	serveCmd.Flags().String("manifest-base-url", "", "site root manifests are fetched from (default: read from public dir)")

	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.public_dir", serveCmd.Flags().Lookup("public-dir"))
	_ = viper.BindPFlag("serve.base_path", serveCmd.Flags().Lookup("base-path"))
	_ = viper.BindPFlag("serve.manifest_base_url", serveCmd.Flags().Lookup("manifest-base-url"))

	rootCmd.AddCommand(serveCmd)
}

func newViewer(cfg *config.Config) *viewer.Server {
	return viewer.NewServer(viewer.Options{
		Addr:            cfg.Serve.Addr,
		PublicDir:       cfg.Serve.PublicDir,
		BasePath:        cfg.Serve.BasePath,
		ManifestBaseURL: cfg.Serve.ManifestBaseURL,
		OutputName:      cfg.OutputName,
		Title:           cfg.Serve.Title,
		Titles:          cfg.Serve.Titles,
		FetchTimeout:    cfg.Serve.FetchTimeout,
	})
}

// runServe serves the viewer until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	return newViewer(cfg).Run(ctx)
}
