package cmd

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build [files...]",
	Aliases: []string{"b"},
	Short:   "Build the style guide",
	Long: `Scan the stylesheets for #overview and #styleguide comments and write
the guide: index.html from the overview markdown, one page per documented
file, and the template assets.

Files default to the configured patterns (**/*.css). Arguments may be
paths or glob patterns and replace the configured files.

Examples:
  frontnote build                         # Build from **/*.css
  frontnote build "src/**/*.scss"         # Build from the matching files
  frontnote build -o docs/guide --clean   # Rebuild into docs/guide from scratch`,
	Args: cobra.ArbitraryArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.close()

	_, err = a.build(cmd.Context())
	return err
}
