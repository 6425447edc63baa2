package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/frontnote/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list [files...]",
	Aliases: []string{"l", "ls"},
	Short:   "List the documented files",
	Long: `Scan the stylesheets and show which files would get a page, without
writing anything.

Examples:
  frontnote list                  # Table of files, pages and section counts
  frontnote list -f json          # Full parse result as JSON
  frontnote list -f yaml "*.scss" # Matching files as YAML`,
	Args: cobra.ArbitraryArgs,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)
	addOutputFlags(listCmd, &listFormat)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	// Warnings must not end up in machine readable output.
	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.scan(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch listFormat {
	case "json":
		return outputListJSON(out, entries)
	case "yaml":
		return outputListYAML(out, entries)
	default:
		return outputListTable(out, entries)
	}
}

func outputListJSON(w io.Writer, entries []*types.FileEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func outputListYAML(w io.Writer, entries []*types.FileEntry) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(entries); err != nil {
		return err
	}
	return encoder.Close()
}

func outputListTable(w io.Writer, entries []*types.FileEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No documented files found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tPAGE\tSECTIONS\tOVERVIEW")
	for _, entry := range entries {
		overview := "-"
		if entry.Overview != nil {
			overview = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", entry.File, entry.URL, len(entry.Sections), overview)
	}
	return tw.Flush()
}
