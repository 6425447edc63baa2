package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/frontnote/internal/config"
	fnerrors "github.com/conneroisu/frontnote/internal/errors"
)

var (
	cfgFile string
	// configErr is set when an explicitly named config file cannot be read.
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "frontnote [files...]",
	Short: "Generate a style guide from tagged comments in your stylesheets",
	Long: `FrontNote reads /* #styleguide */ and /* #overview */ comments from
stylesheets and writes a static HTML style guide: an index page built from
the overview markdown and one page per documented file.

Quick Start:
  frontnote                        Build the guide from **/*.css into ./guide
  frontnote css/button.css         Build the guide for the given files only
  frontnote serve                  Build, serve and rebuild on change
  frontnote list                   Show what would be documented

Configuration is read from .frontnote.yml and FRONTNOTE_* variables.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		return err
	}
	return nil
}

// errorHint returns a line pointing at the configuration sources for
// configuration errors.
func errorHint(err error) string {
	if !fnerrors.IsConfigError(err) {
		return ""
	}
	return fmt.Sprintf("Check %s, the %s_* environment variables and the command-line flags.",
		config.FileName, config.EnvPrefix)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is "+config.FileName+", can also use FRONTNOTE_CONFIG_FILE env var)")
	addGuideFlags(rootCmd.PersistentFlags())
	mustBindFlags(viper.GetViper(), rootCmd.PersistentFlags(), guideFlagBindings)
}

// initConfig selects the configuration file and enables environment
// overrides. A missing default file is not an error.
func initConfig() {
	v := viper.GetViper()

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case os.Getenv("FRONTNOTE_CONFIG_FILE") != "":
		v.SetConfigFile(os.Getenv("FRONTNOTE_CONFIG_FILE"))
	default:
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(strings.TrimSuffix(config.FileName, filepath.Ext(config.FileName)))
	}

	config.BindEnv(v)

	err := v.ReadInConfig()
	if err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
		return
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		configErr = fnerrors.NewConfigError(fnerrors.ErrCodeConfigInvalid, "failed to read config file", err).
			WithLocation(v.ConfigFileUsed(), 0)
	}
}

// loadConfig loads the configuration with args as the files to scan.
func loadConfig(args []string) (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	if err := validateArguments(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.TargetFiles = args
	return cfg, nil
}
