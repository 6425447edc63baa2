package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/frontnote/internal/config"
)

// guideFlagBindings maps the guide flags shared by every command to their
// configuration keys.
var guideFlagBindings = map[string]string{
	"title":              "title",
	"out":                "out",
	"template":           "template",
	"overview":           "overview",
	"css":                "css",
	"script":             "script",
	"include-asset-path": "include_asset_path",
	"exclude":            "exclude",
	"clean":              "clean",
	"cache":              "cache",
	"cache-path":         "cache_path",
	"unterminated":       "unterminated",
	"line-break":         "line_break",
	"workers":            "workers",
	"verbose":            "verbose",
	"log-level":          "log.level",
	"log-format":         "log.format",
}

// serverFlagBindings maps the serve flags to their configuration keys.
var serverFlagBindings = map[string]string{
	"port": "server.port",
	"host": "server.host",
	"open": "server.open",
}

func addGuideFlags(fs *pflag.FlagSet) {
	fs.String("title", "StyleGuide", "guide title")
	fs.StringP("out", "o", "./guide", "output directory")
	fs.String("template", "", "page template (default is the built-in template)")
	fs.String("overview", "", "overview markdown for the index page (default "+config.DefaultOverview+")")
	fs.StringSlice("css", []string{"./style.css"}, "stylesheets linked from every page")
	fs.StringSlice("script", nil, "scripts included in every page")
	fs.StringSlice("include-asset-path", []string{"assets/**/*"}, "asset globs copied from the template directory")
	fs.StringSlice("exclude", []string{"node_modules/**", ".git/**"}, "glob patterns that are never scanned")
	fs.Bool("clean", false, "remove the output directory and reset the cache first")
	fs.Bool("cache", true, "reuse parse results of unchanged files")
	fs.String("cache-path", ".frontnote/cache.db", "parse cache database")
	fs.String("unterminated", config.UnterminatedIgnore, "unterminated comment blocks: ignore or warn")
	fs.String("line-break", "<br>", "marker joining title and comment lines")
	fs.Int("workers", 0, "parallel parse workers (default NumCPU, at most 8)")
	fs.BoolP("verbose", "v", false, "print every file read, rendered, written and copied")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "text", "log format (text, json)")
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", 8080, "port to serve on")
	cmd.Flags().String("host", "localhost", "host to bind to")
	cmd.Flags().Bool("open", false, "open the guide in a browser")

	AddFlagValidation(cmd, "port", ValidatePort)
	mustBindFlags(viper.GetViper(), cmd.Flags(), serverFlagBindings)
}

// addOutputFlags adds --format and validates it against table, json and
// yaml.
func addOutputFlags(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", "table", "output format (table, json, yaml)")
	AddFlagValidation(cmd, "format", func(value string) error {
		return ValidateChoice("format", value, []string{"table", "json", "yaml"})
	})
}

// bindFlags binds every flag named in bindings to its viper key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for flagName, key := range bindings {
		flag := fs.Lookup(flagName)
		if flag == nil {
			return fmt.Errorf("flag --%s is not defined", flagName)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s to %s: %w", flagName, key, err)
		}
	}
	return nil
}

func mustBindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) {
	if err := bindFlags(v, fs, bindings); err != nil {
		panic(err)
	}
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidatePort accepts 0 (any free port) through 65535.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateChoice reports an error naming the allowed values when value is
// not one of them.
func ValidateChoice(name, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q, must be one of: %s", name, value, strings.Join(allowed, ", "))
}
