package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/frontnote/internal/version"
)

var (
	versionFormat   string
	versionShort    bool
	versionDetailed bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the FrontNote version, commit, build time, Go version and
platform.

Examples:
  frontnote version              # Version and platform
  frontnote version --short      # Version only
  frontnote version --detailed   # Every known field
  frontnote version -f json      # As JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "show the version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "show detailed version information")
	AddFlagValidation(versionCmd, "format", func(value string) error {
		return ValidateChoice("format", value, []string{"text", "json", "yaml"})
	})
}

func runVersionCommand(cmd *cobra.Command, _ []string) error {
	return writeVersion(cmd.OutOrStdout(), version.Get(), versionFormat, versionShort, versionDetailed)
}

func writeVersion(w io.Writer, info version.Info, format string, short, detailed bool) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(versionDocument(info))
	case "yaml":
		return yaml.NewEncoder(w).Encode(versionDocument(info))
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", format)
	}

	switch {
	case short:
		_, err := fmt.Fprintln(w, info.Short())
		return err
	case detailed:
		buildType := "development"
		if info.IsRelease() {
			buildType = "release"
		}
		_, err := fmt.Fprintf(w, "%s\nBuild type: %s\n", info.Detailed(), buildType)
		return err
	default:
		_, err := fmt.Fprintf(w, "frontnote %s\nGo: %s\nPlatform: %s\n", info.Short(), info.GoVersion, info.Platform)
		return err
	}
}

type versionOutput struct {
	version.Info `yaml:",inline"`
	IsRelease    bool `json:"is_release" yaml:"is_release"`
}

func versionDocument(info version.Info) versionOutput {
	return versionOutput{Info: info, IsRelease: info.IsRelease()}
}
