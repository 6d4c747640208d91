package search

import (
	"bytes"
	"iter"
	"regexp"
)

// Match is an occurrence of a pattern in a source.
type Match struct {
	Pos uint64 // absolute position of the first byte
	Len int
}

// End returns the absolute position after the match.
func (m Match) End() uint64 {
	return m.Pos + uint64(m.Len)
}

// Literal returns every occurrence of pattern in [start, end) of src, in
// ascending order. Overlapping occurrences are all reported. src has to be
// positioned at start.
//
// The sequence is lazy; callers may stop early.
func Literal(src ByteSource, start, end uint64, pattern []byte) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		if len(pattern) == 0 {
			return
		}
		chunks := NewOverlappingChunks(src, start, end, LiteralChunkSize, len(pattern)-1)
		for ci := range chunks.All() {
			for from := 0; from <= len(ci.Buffer)-len(pattern); {
				i := bytes.Index(ci.Buffer[from:], pattern)
				if i < 0 {
					break
				}
				local := from + i
				if ci.Accept(local + len(pattern)) {
					m := Match{Pos: ci.AbsolutePos + uint64(local), Len: len(pattern)}
					if !yield(m) {
						return
					}
				}
				from = local + 1
			}
		}
	}
}

// Find returns the first occurrence of pattern in [start, end) of src.
func Find(src ByteSource, start, end uint64, pattern []byte) (Match, bool) {
	for m := range Literal(src, start, end, pattern) {
		T().Debugf("search: found %q at %d", pattern, m.Pos)
		return m, true
	}
	return Match{}, false
}

// Regexp returns the matches of re in [start, end) of src, in ascending
// order. src has to be positioned at start. Windows overlap by overlap bytes
// (RegexOverlap if overlap <= 0); matches longer than overlap+1 bytes may be
// cut at window boundaries. Anchors like ^, $ and \b see window boundaries as
// text boundaries.
//
// A match starting inside an already reported match is skipped.
func Regexp(src ByteSource, start, end uint64, re *regexp.Regexp, overlap int) iter.Seq[Match] {
	if overlap <= 0 {
		overlap = RegexOverlap
	}
	return func(yield func(Match) bool) {
		var reported uint64 // end of the last reported match
		seen := false
		emit := func(m Match) bool {
			if seen && m.Pos < reported {
				return true
			}
			seen, reported = true, m.End()
			return yield(m)
		}
		// a match running into the end of a window is held back, as the
		// next window may extend it
		var pending *Match
		chunks := NewOverlappingChunks(src, start, end, RegexChunkSize, overlap)
		for ci := range chunks.All() {
			for _, loc := range re.FindAllIndex(ci.Buffer, -1) {
				if ci.ValidStart > 0 && !ci.Accept(loc[1]) {
					continue
				}
				m := Match{Pos: ci.AbsolutePos + uint64(loc[0]), Len: loc[1] - loc[0]}
				if pending != nil && m.Pos == pending.Pos {
					pending = nil
				} else if pending != nil && m.Pos > pending.Pos {
					p := *pending
					pending = nil
					if !emit(p) {
						return
					}
				}
				if loc[1] == len(ci.Buffer) && chunks.More() {
					pending = &m
					continue
				}
				if !emit(m) {
					return
				}
			}
		}
		if pending != nil {
			emit(*pending)
		}
	}
}
