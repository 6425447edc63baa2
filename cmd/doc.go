// Package cmd provides the command-line interface for FrontNote.
//
// # Available Commands
//
//   - build (default): scan the stylesheets and write the guide
//   - list: show the documented files without writing anything
//   - watch: build, then rebuild on every change
//   - serve: build, serve the guide and live reload open pages
//   - version: show build information
//
// # Command Examples
//
//	// Build from **/*.css into ./guide
//	frontnote
//
//	// Build selected files with a custom template
//	frontnote build "src/**/*.scss" --template theme/index.html
//
//	// Inspect the parse result
//	frontnote list --format json
//
//	// Develop the guide with live reload
//	frontnote serve --port 3000 --open
//
// # Configuration
//
// Configuration is read, from highest to lowest priority, from:
//  1. command-line flags (--out, --template, ...)
//  2. FRONTNOTE_<SECTION>_<KEY> environment variables
//  3. the configuration file: --config, FRONTNOTE_CONFIG_FILE, or
//     .frontnote.yml in the working directory
//  4. built-in defaults
//
// File arguments replace the configured files for one run.
package cmd
