package persistence

import (
	"errors"
	"fmt"
	"io"
	"weak"

	"github.com/guiguan/caster"
	"github.com/npillmayer/vbuf/chunktree"
	"github.com/npillmayer/vbuf/memstore"
)

// EventKind classifies events published by a ChunkedPersistence.
type EventKind int

const (
	// ChunkFaulted is published when a chunk is loaded from the backing store.
	ChunkFaulted EventKind = iota
	// Flushed is published after modifications have been written back.
	Flushed
	// IOFailure is published when the backing store fails.
	IOFailure
)

func (k EventKind) String() string {
	switch k {
	case ChunkFaulted:
		return "chunk-faulted"
	case Flushed:
		return "flushed"
	case IOFailure:
		return "io-failure"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is published to the broadcaster a ChunkedPersistence has been
// configured with.
type Event struct {
	Kind  EventKind
	Chunk memstore.ChunkIndex // affected chunk, if any
	Err   error               // set for IOFailure
}

// Option configures a ChunkedPersistence.
type Option func(*ChunkedPersistence)

// WithEvents lets a ChunkedPersistence publish Events to cast.
// The caller owns cast and is responsible for closing it.
func WithEvents(cast *caster.Caster) Option {
	return func(cp *ChunkedPersistence) {
		cp.events = cast
	}
}

// WithTreeConfig sets the configuration for trees built by a ChunkedPersistence.
// The default leaf width is the chunk size.
func WithTreeConfig(cfg chunktree.Config) Option {
	return func(cp *ChunkedPersistence) {
		cp.cfg = cfg
	}
}

// WithLength sets the initial length of the content instead of asking the
// backing store.
func WithLength(n uint64) Option {
	return func(cp *ChunkedPersistence) {
		cp.stored = n
		cp.sized = true
	}
}

// ChunkedPersistence edits the content of a backing store of arbitrary size,
// loading only the chunks an edit or a read touches.
//
// Trees obtained from a ChunkedPersistence stay readable after Flush: before
// chunks are overwritten in the backing store, every live older tree gets
// its copy of them loaded into its own chunk cache.
//
// A ChunkedPersistence exclusively owns its chunk caches and is not safe for
// concurrent use.
type ChunkedPersistence struct {
	backend   memstore.LoadStore
	gen       *generation
	older     []weak.Pointer[generation] // generations of trees from before the last Flush
	chunkSize uint64
	cfg       chunktree.Config
	tree      *chunktree.Tree
	events    *caster.Caster
	stored    uint64 // length of the content in the backing store
	sized     bool
	dirty     bool
	lo, hi    uint64 // bytes before lo and, if the length is unchanged, from hi on are unmodified
}

// generation is the chunk cache the lazy leaves of a tree read through.
// Flush starts a new generation; a cache entry of a generation is never
// replaced.
type generation struct {
	cache  *memstore.Store
	length uint64 // content length of the backing store when the generation started
}

var _ Persistence = (*ChunkedPersistence)(nil)
var _ Flusher = (*ChunkedPersistence)(nil)

// NewChunked creates a persistence over a backing store, using chunks of
// chunkSize bytes. Unless WithLength is given, ls has to implement Sizer.
// No chunk is loaded during construction.
func NewChunked(ls memstore.LoadStore, chunkSize uint64, opts ...Option) (*ChunkedPersistence, error) {
	if chunkSize == 0 {
		return nil, ErrInvalidChunkSize
	}
	cp := &ChunkedPersistence{
		backend:   ls,
		chunkSize: chunkSize,
		cfg:       chunktree.Config{Width: int(chunkSize)},
	}
	for _, opt := range opts {
		opt(cp)
	}
	if !cp.sized {
		sizer, ok := ls.(Sizer)
		if !ok {
			return nil, ErrUnsizedStore
		}
		size, err := sizer.Size()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsizedStore, err)
		}
		cp.stored = size
	}
	cp.gen = &generation{cache: memstore.New(ls), length: cp.stored}
	cp.tree = cp.lazyTree()
	T().Infof("persistence: %d bytes in %d-byte chunks", cp.stored, chunkSize)
	return cp, nil
}

// Cache returns the chunk cache the current tree reads through.
func (cp *ChunkedPersistence) Cache() *memstore.Store {
	return cp.gen.cache
}

// Len returns the number of bytes.
func (cp *ChunkedPersistence) Len() uint64 {
	return cp.tree.Len()
}

// Tree returns the current tree.
func (cp *ChunkedPersistence) Tree() *chunktree.Tree {
	return cp.tree
}

// IsModified reports whether there are modifications not yet flushed.
func (cp *ChunkedPersistence) IsModified() bool {
	return cp.dirty
}

// Insert inserts data at offset, loading only the chunk containing offset.
func (cp *ChunkedPersistence) Insert(offset uint64, data []byte) error {
	tree, err := cp.tree.Insert(offset, data)
	if err != nil {
		return err
	}
	cp.tree = tree
	if len(data) > 0 {
		cp.touch(offset, max(cp.hi, offset)+uint64(len(data)))
	}
	return nil
}

// Remove deletes [start, end), loading only the chunks the range overlaps.
func (cp *ChunkedPersistence) Remove(start, end uint64) error {
	tree, err := cp.tree.Remove(start, end)
	if err != nil {
		return err
	}
	cp.tree = tree
	if end > start {
		n := end - start
		cp.touch(start, max(start, cp.hi-min(cp.hi, n)))
	}
	return nil
}

func (cp *ChunkedPersistence) touch(lo, hi uint64) {
	if !cp.dirty || lo < cp.lo {
		cp.lo = lo
	}
	cp.hi = hi
	cp.dirty = true
}

// Flush writes the modified region back to the backing store.
//
// The region starts at the chunk holding the lowest modified offset. It ends at
// the end of content, or, if the length did not change, at the end of the
// chunk holding the highest modified offset. If Flush fails, the content of
// the buffer is unchanged and Flush may be retried.
func (cp *ChunkedPersistence) Flush() error {
	if !cp.dirty {
		return nil
	}
	length := cp.tree.Len()
	from := cp.lo / cp.chunkSize * cp.chunkSize
	to := length
	if length == cp.stored {
		to = min(length, (cp.hi+cp.chunkSize-1)/cp.chunkSize*cp.chunkSize)
	}
	region, err := cp.read(from, to)
	if err != nil {
		return err
	}
	// chunks in [from, overwritten) of the backing store are about to change
	overwritten := max(to, cp.stored)
	if err := cp.preserve(from, overwritten); err != nil {
		return err
	}
	next := &generation{cache: memstore.New(cp.backend), length: length}
	for off := from; off < to; off += cp.chunkSize {
		end := min(off+cp.chunkSize, to)
		if err := next.cache.Put(memstore.NewChunkIndex(off, cp.chunkSize), region[off-from:end-from]); err != nil {
			return err
		}
	}
	if err := next.cache.StoreAll(); err != nil {
		cp.publish(Event{Kind: IOFailure, Err: err})
		return err
	}
	if length < cp.stored {
		if err := cp.truncate(length); err != nil {
			cp.publish(Event{Kind: IOFailure, Err: err})
			return err
		}
	}
	T().Infof("persistence: flushed [%d, %d), length %d", from, to, length)
	cp.older = append(cp.older, weak.Make(cp.gen))
	cp.gen = next
	cp.stored = length
	cp.dirty = false
	cp.lo, cp.hi = 0, 0
	cp.tree = cp.lazyTree()
	cp.publish(Event{Kind: Flushed})
	return nil
}

// preserve loads the chunks overlapping [from, to) into the caches of the
// current generation and of every older generation still referenced by a
// tree, so that these trees do not depend on the backing store for them.
func (cp *ChunkedPersistence) preserve(from, to uint64) error {
	live := cp.older[:0]
	for _, w := range cp.older {
		if g := w.Value(); g != nil {
			if err := cp.pin(g, from, to); err != nil {
				return err
			}
			live = append(live, w)
		}
	}
	clear(cp.older[len(live):])
	cp.older = live
	return cp.pin(cp.gen, from, to)
}

func (cp *ChunkedPersistence) pin(g *generation, from, to uint64) error {
	for off := from; off < min(to, g.length); off += cp.chunkSize {
		src := &chunkSource{cp: cp, gen: g, idx: memstore.NewChunkIndex(off, cp.chunkSize)}
		if _, err := src.Fetch(); err != nil {
			return err
		}
	}
	return nil
}

func (cp *ChunkedPersistence) truncate(length uint64) error {
	tr, ok := cp.backend.(Truncater)
	if !ok {
		return fmt.Errorf("%w: store does not support truncation", ErrTruncate)
	}
	if err := tr.Truncate(length); err != nil {
		return fmt.Errorf("%w: %w", ErrTruncate, err)
	}
	return nil
}

// read collects the bytes in [from, to) of the current tree.
func (cp *ChunkedPersistence) read(from, to uint64) ([]byte, error) {
	buf := make([]byte, 0, to-from)
	c, err := cp.tree.NewCursor(from)
	if err != nil {
		return nil, err
	}
	for uint64(len(buf)) < to-from {
		span, err := c.Next()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		need := to - from - uint64(len(buf))
		buf = append(buf, span[:min(uint64(len(span)), need)]...)
	}
	return buf, nil
}

// lazyTree creates a tree of lazy leaves over the current generation.
func (cp *ChunkedPersistence) lazyTree() *chunktree.Tree {
	length := cp.gen.length
	srcs := make([]chunktree.Source, 0, (length+cp.chunkSize-1)/cp.chunkSize)
	for off := uint64(0); off < length; off += cp.chunkSize {
		srcs = append(srcs, &chunkSource{
			cp:  cp,
			gen: cp.gen,
			idx: memstore.NewChunkIndex(off, cp.chunkSize),
		})
	}
	return chunktree.FromSources(cp.cfg, srcs...)
}

// publish hands ev to the subscribers without waiting for them. Subscribers
// whose channel is full miss the event.
func (cp *ChunkedPersistence) publish(ev Event) {
	if ev.Kind == IOFailure {
		T().Errorf("persistence: %v", ev.Err)
	}
	if cp.events != nil {
		cp.events.TryPub(ev)
	}
}

// chunkSource delivers the bytes of one chunk of a generation to a lazy
// tree leaf.
type chunkSource struct {
	cp  *ChunkedPersistence
	gen *generation
	idx memstore.ChunkIndex
}

func (src *chunkSource) Len() uint64 {
	return min(src.idx.Size, src.gen.length-src.idx.Offset)
}

func (src *chunkSource) Fetch() ([]byte, error) {
	faulting := !src.gen.cache.Contains(src.idx)
	c, err := src.gen.cache.Get(src.idx)
	if err != nil {
		src.cp.publish(Event{Kind: IOFailure, Chunk: src.idx, Err: err})
		return nil, err
	}
	if faulting {
		src.cp.publish(Event{Kind: ChunkFaulted, Chunk: src.idx})
	}
	data := c.Data()
	if size := src.Len(); uint64(len(data)) > size {
		data = data[:size]
	}
	return data, nil
}
