// Package types provides common type definitions used throughout FrontNote.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"path/filepath"
	"strings"
	"time"
)

// RegionKind identifies which marker opened a tagged comment region.
type RegionKind int

const (
	// KindOverview is a project-level region opened with #overview.
	KindOverview RegionKind = iota
	// KindStyleguide is a per-item region opened with #styleguide.
	KindStyleguide
)

// String returns the marker name of the region kind.
func (k RegionKind) String() string {
	switch k {
	case KindOverview:
		return "overview"
	case KindStyleguide:
		return "styleguide"
	default:
		return "unknown"
	}
}

// RawRegion is a tagged comment block exactly as it appears in a file,
// delimiters included.
type RawRegion struct {
	Kind RegionKind
	Text string
}

// ParsedSection is the structured form of one tagged comment region.
type ParsedSection struct {
	// Title is the first run of non-blank lines joined with the line-break marker.
	Title string `json:"title" yaml:"title"`
	// Comment holds the non-blank lines following the title.
	Comment string `json:"comment" yaml:"comment"`
	// Attributes are the @-lines of the region with the @ removed, in order.
	Attributes []string `json:"attributes" yaml:"attributes"`
	// Code is the first fenced code sample, nil when the region has none.
	Code *string `json:"code,omitempty" yaml:"code,omitempty"`
}

// HasCode reports whether the section carries a code sample.
func (s ParsedSection) HasCode() bool {
	return s.Code != nil
}

// BlockRef points at a region opener inside a file.
type BlockRef struct {
	Kind RegionKind `json:"kind" yaml:"kind"`
	Line int        `json:"line" yaml:"line"`
}

// FileEntry groups the parsed regions of one scanned file with metadata
// derived from its path. It is what the generator renders one page from.
type FileEntry struct {
	// File is the path as discovered (relative to the working directory).
	File string `json:"file" yaml:"file"`
	// FileName is the base name without extension, e.g. "button".
	FileName string `json:"file_name" yaml:"file_name"`
	// URL is the page the file is rendered to, e.g. "button.html".
	URL string `json:"url" yaml:"url"`
	// Dirs is File split on the path separator.
	Dirs []string `json:"dirs" yaml:"dirs"`
	// Ext is the file extension including the dot.
	Ext string `json:"ext" yaml:"ext"`

	Overview *ParsedSection  `json:"overview,omitempty" yaml:"overview,omitempty"`
	Sections []ParsedSection `json:"sections" yaml:"sections"`

	// Unterminated lists opening markers that never reached a */.
	Unterminated []BlockRef `json:"unterminated,omitempty" yaml:"unterminated,omitempty"`

	// ModTime and Hash identify the content the entry was parsed from.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	Hash    string    `json:"hash" yaml:"hash"`
}

// NewFileEntry derives the path metadata for file. Overview and Sections
// are left empty for the caller to fill.
func NewFileEntry(file string) *FileEntry {
	ext := filepath.Ext(file)
	name := strings.TrimSuffix(filepath.Base(file), ext)

	return &FileEntry{
		File:     file,
		FileName: name,
		URL:      name + ".html",
		Dirs:     strings.Split(file, string(filepath.Separator)),
		Ext:      ext,
		Sections: []ParsedSection{},
	}
}

// HasContent reports whether the file contributed an overview or at least
// one section. Files without content are not rendered.
func (f *FileEntry) HasContent() bool {
	return f.Overview != nil || len(f.Sections) > 0
}
