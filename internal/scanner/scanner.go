// Package scanner discovers guide files and turns them into FileEntry
// values using a bounded pool of parse workers.
package scanner

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/conneroisu/frontnote/internal/cache"
	"github.com/conneroisu/frontnote/internal/errors"
	"github.com/conneroisu/frontnote/internal/logging"
	"github.com/conneroisu/frontnote/internal/parser"
	"github.com/conneroisu/frontnote/internal/registry"
	"github.com/conneroisu/frontnote/internal/types"
)

const defaultWorkers = 4

// Scanner reads files, parses their tagged comments and registers the
// resulting entries.
type Scanner struct {
	root     string
	parser   *parser.Parser
	registry *registry.GuideRegistry
	cache    *cache.Store
	logger   logging.Logger
	console  *logging.Console
	workers  int

	warnUnterminated bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRoot sets the directory scanned paths are relative to.
func WithRoot(root string) Option {
	return func(s *Scanner) { s.root = root }
}

// WithRegistry registers every scanned entry in reg.
func WithRegistry(reg *registry.GuideRegistry) Option {
	return func(s *Scanner) { s.registry = reg }
}

// WithCache consults and fills store. A nil store disables caching.
func WithCache(store *cache.Store) Option {
	return func(s *Scanner) { s.cache = store }
}

// WithLogger sets the structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger.WithComponent("scanner")
		}
	}
}

// WithConsole sets the progress console.
func WithConsole(console *logging.Console) Option {
	return func(s *Scanner) { s.console = console }
}

// WithWorkers bounds the number of files parsed at once.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithUnterminatedWarnings reports comment blocks that never close.
func WithUnterminatedWarnings(enabled bool) Option {
	return func(s *Scanner) { s.warnUnterminated = enabled }
}

// New creates a scanner. A nil parser selects the default patterns.
func New(p *parser.Parser, opts ...Option) *Scanner {
	if p == nil {
		p = parser.New(nil)
	}
	s := &Scanner{
		root:     ".",
		parser:   p,
		registry: registry.New(),
		logger:   logging.NewNopLogger(),
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry entries are registered in.
func (s *Scanner) Registry() *registry.GuideRegistry {
	return s.registry
}

// Result is the outcome of one scan.
type Result struct {
	// Entries holds the files with content, in input order.
	Entries []*types.FileEntry
	// Diagnostics are warnings about unterminated blocks and page clashes.
	Diagnostics []errors.Diagnostic
	// Scanned counts the files looked at, CacheHits those served from cache.
	Scanned   int
	CacheHits int
}

// ScanFiles scans paths concurrently. Files that cannot be read are
// skipped and their errors joined into the returned error; the result
// still holds every file that was read.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string) (*Result, error) {
	perf := logging.StartOperation(s.logger, "scan")

	entries := make([]*types.FileEntry, len(paths))
	collector := errors.NewErrorCollector()
	var hits atomic.Int64

	p := pool.New().WithMaxGoroutines(s.workers)
	for i, path := range paths {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			entry, hit, err := s.scanFile(path)
			if err != nil {
				collector.AddError(err)
				return
			}
			if hit {
				hits.Add(1)
			}
			entries[i] = entry
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Entries:   make([]*types.FileEntry, 0, len(paths)),
		Scanned:   len(paths),
		CacheHits: int(hits.Load()),
	}

	for _, entry := range entries {
		if entry == nil {
			continue
		}
		for _, block := range entry.Unterminated {
			if s.warnUnterminated {
				collector.Add(errors.Diagnostic{
					File:     entry.File,
					Line:     block.Line,
					Message:  fmt.Sprintf("unterminated #%s block", block.Kind),
					Severity: errors.ErrorSeverityWarning,
				})
			}
		}
		if !entry.HasContent() {
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	for _, d := range duplicateURLs(result.Entries) {
		collector.Add(d)
	}

	result.Diagnostics = collector.Diagnostics()
	for _, d := range result.Diagnostics {
		s.logger.Warn(ctx, nil, d.Message, "file", d.File, "line", d.Line)
		s.console.Warn("%s", d.Error())
	}

	for _, entry := range result.Entries {
		s.registry.Register(entry)
	}

	err := collector.Err()
	if err != nil {
		perf.EndWithError(ctx, err)
	} else {
		perf.End(ctx, "files", result.Scanned, "entries", len(result.Entries), "cache_hits", result.CacheHits)
	}
	return result, err
}

// Refresh scans paths and drops registry entries for files that are no
// longer among them or no longer carry content.
func (s *Scanner) Refresh(ctx context.Context, paths []string) (*Result, error) {
	result, err := s.ScanFiles(ctx, paths)
	if result == nil {
		return nil, err
	}

	keep := make([]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		keep = append(keep, entry.File)
	}
	for _, path := range s.registry.Retain(keep) {
		s.logger.Debug(ctx, "Removed file from registry", "file", path)
	}
	return result, err
}

// scanFile returns the entry for path, from the cache when it is fresh.
// The entry is returned even when it has no content.
func (s *Scanner) scanFile(path string) (*types.FileEntry, bool, error) {
	full := path
	if !filepath.IsAbs(path) {
		full = filepath.Join(s.root, path)
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, false, readError(path, err)
	}

	if s.cache != nil {
		entry, ok, err := s.cache.Get(path, info.ModTime(), info.Size())
		if err != nil {
			s.logger.Warn(context.Background(), err, "Cache lookup failed", "file", path)
		} else if ok {
			s.console.Read(path)
			return entry, true, nil
		}
	}

	content, err := os.ReadFile(full)
	if err != nil {
		return nil, false, readError(path, err)
	}
	s.console.Read(path)

	entry := s.Parse(path, string(content))
	entry.ModTime = info.ModTime()
	entry.Hash = fmt.Sprintf("%x", crc32.ChecksumIEEE(content))

	if s.cache != nil {
		if err := s.cache.Put(entry, info.Size()); err != nil {
			s.logger.Warn(context.Background(), err, "Cache write failed", "file", path)
		}
	}
	return entry, false, nil
}

// Parse builds the entry for one file's text without touching the disk.
func (s *Scanner) Parse(path, text string) *types.FileEntry {
	doc := s.parser.Parse(text)

	entry := types.NewFileEntry(path)
	entry.Overview = doc.Overview
	entry.Sections = doc.Sections
	for _, block := range s.parser.Extractor().Unterminated(text) {
		entry.Unterminated = append(entry.Unterminated, types.BlockRef{Kind: block.Kind, Line: block.Line})
	}
	return entry
}

func readError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.ErrFileNotFound(path, err)
	}
	return errors.ErrReadFailed(path, err)
}

// duplicateURLs reports entries whose page name was already produced by an
// earlier entry. The later file overwrites the earlier page.
func duplicateURLs(entries []*types.FileEntry) []errors.Diagnostic {
	var diagnostics []errors.Diagnostic
	first := make(map[string]string, len(entries))

	for _, entry := range entries {
		if prev, ok := first[entry.URL]; ok {
			diagnostics = append(diagnostics, errors.Diagnostic{
				File:     entry.File,
				Message:  fmt.Sprintf("page %s overwrites the one generated from %s", entry.URL, prev),
				Severity: errors.ErrorSeverityWarning,
			})
			continue
		}
		first[entry.URL] = entry.File
	}
	return diagnostics
}
