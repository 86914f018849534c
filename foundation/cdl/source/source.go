// File: source.go
// Title: Source Spans and Positions
// Description: Half-open byte spans into CDL source text and the lookup that
//              maps byte offsets to 1-based line and column numbers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-02
// Modified: 2026-03-02
//
// Change History:
// - 2026-03-02 v0.1.0: Initial implementation

package source

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into the source text
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Covers reports whether other lies completely inside s
func (s Span) Covers(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Union returns the smallest span covering both s and other
func (s Span) Union(other Span) Span {
	u := s
	if other.Start < u.Start {
		u.Start = other.Start
	}
	if other.End > u.End {
		u.End = other.End
	}
	return u
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Position is a resolved location in the source text
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// LineIndex maps byte offsets to line and column numbers. Columns count
// runes, so multi-byte characters advance the column by one.
type LineIndex struct {
	src        string
	lineStarts []int
}

// NewLineIndex scans src once and records the offset of every line start
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, lineStarts: starts}
}

// Lines returns the number of lines in the source
func (li *LineIndex) Lines() int {
	return len(li.lineStarts)
}

// Position returns the line and column of offset. Offsets past the end of
// the source are clamped to the end.
func (li *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.src) {
		offset = len(li.src)
	}

	// index of the last line start <= offset
	line := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1

	start := li.lineStarts[line]
	column := utf8.RuneCountInString(li.src[start:offset]) + 1

	return Position{Offset: offset, Line: line + 1, Column: column}
}

// LineText returns the text of the 1-based line without its line break
func (li *LineIndex) LineText(line int) string {
	if line < 1 || line > len(li.lineStarts) {
		return ""
	}
	start := li.lineStarts[line-1]
	end := len(li.src)
	if line < len(li.lineStarts) {
		end = li.lineStarts[line] - 1
	}
	if end > start && li.src[end-1] == '\r' {
		end--
	}
	return li.src[start:end]
}
