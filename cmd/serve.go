package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/frontnote/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve [files...]",
	Aliases: []string{"s"},
	Short:   "Build, serve and live reload the style guide",
	Long: `Build the guide, serve the output directory over HTTP and rebuild on
every change. Open pages reload themselves after each successful rebuild.

Examples:
  frontnote serve                 # http://localhost:8080
  frontnote serve -p 3000 --open  # Serve on port 3000 and open a browser
  frontnote serve --host 0.0.0.0  # Listen on every interface`,
	Args: cobra.ArbitraryArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServerFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	srv := server.New(cfg, server.WithLogger(a.logger))

	if err := a.initialBuild(ctx, srv.NotifyBuild); err != nil {
		return err
	}

	fw, err := a.watch(ctx, srv.NotifyBuild)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s, press Ctrl+C to stop\n",
		displayPath(cfg.Out), cfg.Address())
	return srv.Start(ctx)
}
