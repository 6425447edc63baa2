// Package internal contains the implementation packages of the frontnote
// command. None of them are importable outside this module.
//
// # Package Organization
//
//   - parser: extracts #overview and #styleguide comments and splits them
//     into title, comment, attributes and code
//   - types: FileEntry and ParsedSection, shared by every other package
//   - scanner: file discovery with glob patterns and concurrent parsing
//   - cache: SQLite store of parse results keyed by path, size and mtime
//   - registry: the current set of documented files with change events
//   - generator: renders the index and file pages and copies assets
//   - watcher: debounced file watching that triggers rebuilds
//   - livereload: websocket hub and client script that reload open pages
//   - server: HTTP preview of the output directory
//   - config, logging, errors, version: ambient support
//
// # Data Flow
//
// A build runs scanner.Discover over the configured patterns, parses each
// file (or takes it from the cache), registers the entries and hands them
// to the generator. In watch and serve mode the watcher repeats the build
// after each batch of changes and the server tells connected pages to
// reload.
package internal
