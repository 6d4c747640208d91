package memstore

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// LoadStore is the backing store a Store draws its chunks from.
//
// Load returns the bytes in [offset, offset+size). A store holding nothing in
// that range returns (nil, nil); absence of data is not an error. Load may
// return fewer than size bytes at the end of the stored content.
type LoadStore interface {
	Load(offset, size uint64) ([]byte, error)
	Store(offset uint64, data []byte) error
}

// ChunkIndex identifies a fixed-size byte range of a backing store.
type ChunkIndex struct {
	Offset uint64
	Size   uint64
}

// NewChunkIndex creates the index for the chunk of size bytes at offset.
func NewChunkIndex(offset, size uint64) ChunkIndex {
	return ChunkIndex{Offset: offset, Size: size}
}

// EndOffset returns the first offset after the chunk.
func (ci ChunkIndex) EndOffset() uint64 {
	return ci.Offset + ci.Size
}

func (ci ChunkIndex) String() string {
	return fmt.Sprintf("[%d+%d]", ci.Offset, ci.Size)
}

// Chunk is a cache entry. It is either loaded, holding a copy of the
// backing store's bytes, or empty, if the backing store had nothing there.
type Chunk struct {
	data   []byte
	loaded bool
	dirty  bool
}

// IsEmpty reports whether the backing store had no data for this chunk.
func (c *Chunk) IsEmpty() bool {
	return !c.loaded
}

// Data returns the cached bytes. Clients must not modify them.
func (c *Chunk) Data() []byte {
	return c.data
}

// NeedsStore reports whether the chunk differs from the backing store.
func (c *Chunk) NeedsStore() bool {
	return c.loaded && c.dirty
}

// Store caches chunks of a LoadStore.
type Store struct {
	chunks map[ChunkIndex]*Chunk
	ls     LoadStore
}

// New creates an empty chunk cache over a backing store.
func New(ls LoadStore) *Store {
	return &Store{
		chunks: make(map[ChunkIndex]*Chunk),
		ls:     ls,
	}
}

// Backend returns the backing store of s.
func (s *Store) Backend() LoadStore {
	return s.ls
}

// Get returns the cache entry for idx, loading it from the backing store on
// first access. Subsequent calls for the same index do not touch the backing
// store. A load error is returned and nothing is cached.
func (s *Store) Get(idx ChunkIndex) (*Chunk, error) {
	if idx.Size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChunkIndex, idx)
	}
	if c, ok := s.chunks[idx]; ok {
		return c, nil
	}
	data, err := s.ls.Load(idx.Offset, idx.Size)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLoad, idx, err)
	}
	c := &Chunk{}
	if data != nil {
		if uint64(len(data)) > idx.Size {
			data = data[:idx.Size]
		}
		c.data, c.loaded = data, true
	}
	T().Debugf("memstore: loaded chunk %s, %d bytes", idx, len(c.data))
	s.chunks[idx] = c
	return c, nil
}

// Put replaces the cached content of idx with a copy of data and marks it as
// needing to be stored.
func (s *Store) Put(idx ChunkIndex, data []byte) error {
	if idx.Size == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidChunkIndex, idx)
	}
	s.chunks[idx] = &Chunk{
		data:   append([]byte{}, data...),
		loaded: true,
		dirty:  true,
	}
	return nil
}

// Contains reports whether idx is cached, without loading it.
func (s *Store) Contains(idx ChunkIndex) bool {
	_, ok := s.chunks[idx]
	return ok
}

// Drop removes idx from the cache, discarding unstored modifications.
func (s *Store) Drop(idx ChunkIndex) {
	delete(s.chunks, idx)
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	return len(s.chunks)
}

// Dirty returns the number of cached entries which need to be stored.
func (s *Store) Dirty() int {
	n := 0
	for _, c := range s.chunks {
		if c.NeedsStore() {
			n++
		}
	}
	return n
}

// StoreAll writes every modified chunk back to the backing store, in
// ascending offset order, and clears its dirty flag. Empty and unmodified
// chunks are not written. StoreAll stops at the first failing write; chunks
// not written stay dirty.
func (s *Store) StoreAll() error {
	keys := slices.SortedFunc(maps.Keys(s.chunks), func(a, b ChunkIndex) int {
		return cmp.Or(cmp.Compare(a.Offset, b.Offset), cmp.Compare(a.Size, b.Size))
	})
	for _, idx := range keys {
		c := s.chunks[idx]
		if !c.NeedsStore() {
			continue
		}
		if err := s.ls.Store(idx.Offset, c.data); err != nil {
			T().Errorf("memstore: storing chunk %s failed: %v", idx, err)
			return fmt.Errorf("%w %s: %w", ErrStore, idx, err)
		}
		c.dirty = false
		T().Debugf("memstore: stored chunk %s", idx)
	}
	return nil
}
