package search

import "iter"

// Recommended window sizes.
const (
	// LiteralChunkSize is the number of new bytes per window for literal search.
	LiteralChunkSize = 4096
	// RegexChunkSize is the number of new bytes per window for regex search.
	RegexChunkSize = 65536
	// RegexOverlap is the default overlap for regex search. Regex matches
	// longer than RegexOverlap+1 bytes may be cut at window boundaries.
	RegexOverlap = 4096
)

// ByteSource is a forward sequence of bytes, e.g. a buffer cursor.
// Next returns false at the end of the sequence.
type ByteSource interface {
	Next() (byte, bool)
}

// ChunkInfo is a search window.
type ChunkInfo struct {
	// Buffer holds the window's bytes, including the overlap with the previous
	// window. It is a fresh copy owned by the receiver.
	Buffer []byte
	// AbsolutePos is the position of Buffer[0] in the source.
	AbsolutePos uint64
	// ValidStart is the offset into Buffer where new data begins. Matches
	// ending at or before ValidStart have been reported for the previous window.
	ValidStart int
}

// Accept reports whether a match ending at buffer offset matchEnd (exclusive)
// belongs to this window.
func (ci ChunkInfo) Accept(matchEnd int) bool {
	return matchEnd > ci.ValidStart
}

// OverlappingChunks produces overlapping windows over a ByteSource.
//
// The sequence is lazy and single-pass. To scan again, create a new iterator
// from a fresh source.
type OverlappingChunks struct {
	src         ByteSource
	buffer      []byte
	bufferStart uint64 // absolute position of buffer[0]
	readPos     uint64 // absolute position of the next byte to read
	end         uint64
	chunkSize   int
	overlap     int
	first       bool
}

// NewOverlappingChunks creates an iterator over [start, end) of src, which has
// to be positioned at start. Every window adds up to chunkSize new bytes to
// the trailing overlap bytes of its predecessor.
//
// chunkSize <= 0 selects LiteralChunkSize, a negative overlap is treated as 0.
func NewOverlappingChunks(src ByteSource, start, end uint64, chunkSize, overlap int) *OverlappingChunks {
	if chunkSize <= 0 {
		chunkSize = LiteralChunkSize
	}
	overlap = max(overlap, 0)
	return &OverlappingChunks{
		src:         src,
		buffer:      make([]byte, 0, chunkSize+overlap),
		bufferStart: start,
		readPos:     start,
		end:         end,
		chunkSize:   chunkSize,
		overlap:     overlap,
		first:       true,
	}
}

// Next returns the next window, or false if the source is exhausted.
func (oc *OverlappingChunks) Next() (ChunkInfo, bool) {
	valid, ok := oc.fill()
	if !ok {
		return ChunkInfo{}, false
	}
	return ChunkInfo{
		Buffer:      append([]byte(nil), oc.buffer...),
		AbsolutePos: oc.bufferStart,
		ValidStart:  valid,
	}, true
}

// More reports whether the source may hold bytes beyond the current window.
func (oc *OverlappingChunks) More() bool {
	return oc.readPos < oc.end
}

// All returns the remaining windows as a sequence.
func (oc *OverlappingChunks) All() iter.Seq[ChunkInfo] {
	return func(yield func(ChunkInfo) bool) {
		for {
			ci, ok := oc.Next()
			if !ok || !yield(ci) {
				return
			}
		}
	}
}

// fill advances the buffer to the next window and reports whether new bytes
// have been read. It returns the number of bytes carried over from the
// previous window, which is min(overlap, len(buffer)) unless chunkSize is
// smaller than overlap and the previous window was short.
func (oc *OverlappingChunks) fill() (int, bool) {
	if oc.first {
		oc.first = false
		oc.read(oc.chunkSize)
		return 0, len(oc.buffer) > 0
	}
	if oc.readPos >= oc.end {
		return 0, false
	}
	if len(oc.buffer) > oc.overlap {
		drop := len(oc.buffer) - oc.overlap
		oc.buffer = append(oc.buffer[:0], oc.buffer[drop:]...)
		oc.bufferStart += uint64(drop)
	}
	carried := len(oc.buffer)
	oc.read(oc.overlap + oc.chunkSize)
	return carried, len(oc.buffer) > carried
}

// read appends bytes from the source until the buffer holds target bytes,
// the end position is reached, or the source is exhausted.
func (oc *OverlappingChunks) read(target int) {
	for len(oc.buffer) < target && oc.readPos < oc.end {
		b, ok := oc.src.Next()
		if !ok {
			oc.end = oc.readPos
			return
		}
		oc.buffer = append(oc.buffer, b)
		oc.readPos++
	}
}
