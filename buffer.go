package vbuf

import (
	"fmt"
	"io"
	"iter"
	"regexp"

	"github.com/npillmayer/vbuf/chunktree"
	"github.com/npillmayer/vbuf/memstore"
	"github.com/npillmayer/vbuf/persistence"
	"github.com/npillmayer/vbuf/search"
)

// Buffer is an editable byte sequence.
//
// A Buffer is driven from a single goroutine (usually an editor's event loop)
// and is not safe for concurrent mutation. Cursors and snapshots obtained from
// a buffer are not affected by later edits.
//
// Positions are byte offsets.
//
//	Operation     |   Cost
//	--------------+--------------------
//	Len           |   O(1)
//	Insert        |   O(depth + |data|)
//	Remove        |   O(depth + touched nodes)
//	IterAt        |   O(depth)
//	Next (cursor) |   O(1) amortized
type Buffer struct {
	p persistence.Persistence
}

// New creates a buffer on top of a persistence.
func New(p persistence.Persistence) *Buffer {
	return &Buffer{p: p}
}

// FromBytes creates an in-memory buffer holding a copy of data.
func FromBytes(data []byte) *Buffer {
	return New(persistence.FromBytes(data, chunktree.Config{}))
}

// NewChunked creates a buffer over a backing store, which is read in chunks
// of chunkSize bytes on demand.
func NewChunked(ls memstore.LoadStore, chunkSize uint64, opts ...persistence.Option) (*Buffer, error) {
	cp, err := persistence.NewChunked(ls, chunkSize, opts...)
	if err != nil {
		return nil, err
	}
	return New(cp), nil
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() uint64 {
	return b.p.Len()
}

// Insert inserts data at offset. offset must not exceed Len.
func (b *Buffer) Insert(offset uint64, data []byte) error {
	if err := b.p.Insert(offset, data); err != nil {
		T().Errorf("vbuf: insert at %d: %v", offset, err)
		return err
	}
	return nil
}

// Remove deletes the bytes in [start, end). start must be less than Len and
// end must not exceed it, except for removing an empty range from an empty
// buffer.
func (b *Buffer) Remove(start, end uint64) error {
	if err := b.p.Remove(start, end); err != nil {
		T().Errorf("vbuf: remove [%d, %d): %v", start, end, err)
		return err
	}
	return nil
}

// Snapshot returns the current content as an immutable tree.
func (b *Buffer) Snapshot() *chunktree.Tree {
	return b.p.Tree()
}

// Persistence returns the persistence the buffer has been created with.
func (b *Buffer) Persistence() persistence.Persistence {
	return b.p
}

// IterAt returns a cursor over the bytes from offset on. If offset is beyond
// Len, the cursor is exhausted from the start and reports the error via Err.
func (b *Buffer) IterAt(offset uint64) *ByteCursor {
	c, err := b.p.Tree().NewCursor(offset)
	return &ByteCursor{c: c, pos: offset, err: err}
}

// Bytes returns a copy of the complete content.
func (b *Buffer) Bytes() ([]byte, error) {
	return b.p.Tree().Bytes()
}

// WriteTo writes the complete content to w. WriteTo implements io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	return b.p.Tree().WriteTo(w)
}

// Flush writes modifications back to the backing store. Buffers without a
// backing store return ErrNotFlushable.
func (b *Buffer) Flush() error {
	f, ok := b.p.(persistence.Flusher)
	if !ok {
		return ErrNotFlushable
	}
	return f.Flush()
}

// FindAll returns every occurrence of pattern, in ascending order.
func (b *Buffer) FindAll(pattern []byte) iter.Seq[search.Match] {
	return search.Literal(b.IterAt(0), 0, b.Len(), pattern)
}

// Find returns the position of the first occurrence of pattern at or after
// from.
func (b *Buffer) Find(pattern []byte, from uint64) (uint64, bool) {
	if from > b.Len() {
		return 0, false
	}
	m, ok := search.Find(b.IterAt(from), from, b.Len(), pattern)
	return m.Pos, ok
}

// FindRegexp returns the matches of re at or after from, in ascending order.
func (b *Buffer) FindRegexp(re *regexp.Regexp, from uint64) (iter.Seq[search.Match], error) {
	if re == nil || from > b.Len() {
		return nil, fmt.Errorf("%w: regexp search from %d", ErrIllegalArguments, from)
	}
	return search.Regexp(b.IterAt(from), from, b.Len(), re, search.RegexOverlap), nil
}
