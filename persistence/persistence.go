package persistence

import (
	"errors"

	"github.com/npillmayer/vbuf/chunktree"
)

var (
	// ErrUnsizedStore signals a backing store which cannot report its size.
	ErrUnsizedStore = errors.New("persistence: backing store size unknown")
	// ErrInvalidChunkSize signals a chunk size of 0.
	ErrInvalidChunkSize = errors.New("persistence: invalid chunk size")
	// ErrTruncate signals that a shrunk buffer could not be truncated in the
	// backing store.
	ErrTruncate = errors.New("persistence: cannot truncate backing store")
)

// Persistence owns the current tree of a buffer.
//
// Insert and Remove have the semantics of the corresponding chunktree
// operations and replace the current tree only if the edit succeeds.
type Persistence interface {
	Len() uint64
	Insert(offset uint64, data []byte) error
	Remove(start, end uint64) error
	// Tree returns the current tree. It stays valid and unchanged when the
	// persistence is edited later.
	Tree() *chunktree.Tree
}

// Flusher is implemented by persistences which write modifications back to a
// backing store.
type Flusher interface {
	Flush() error
}

// Sizer is implemented by backing stores which know their size in bytes.
type Sizer interface {
	Size() (uint64, error)
}

// Truncater is implemented by backing stores which can be shortened.
type Truncater interface {
	Truncate(size uint64) error
}

// TreePersistence keeps a buffer's content in memory.
type TreePersistence struct {
	tree *chunktree.Tree
}

var _ Persistence = (*TreePersistence)(nil)

// FromBytes creates an in-memory persistence holding a copy of data.
func FromBytes(data []byte, cfg chunktree.Config) *TreePersistence {
	return &TreePersistence{tree: chunktree.FromBytes(cfg, data)}
}

// FromTree creates an in-memory persistence starting with tree.
func FromTree(tree *chunktree.Tree) *TreePersistence {
	return &TreePersistence{tree: tree}
}

// Len returns the number of bytes.
func (tp *TreePersistence) Len() uint64 {
	return tp.tree.Len()
}

// Insert inserts data at offset.
func (tp *TreePersistence) Insert(offset uint64, data []byte) error {
	tree, err := tp.tree.Insert(offset, data)
	if err != nil {
		return err
	}
	tp.tree = tree
	return nil
}

// Remove deletes the byte range [start, end).
func (tp *TreePersistence) Remove(start, end uint64) error {
	tree, err := tp.tree.Remove(start, end)
	if err != nil {
		return err
	}
	tp.tree = tree
	return nil
}

// Tree returns the current tree.
func (tp *TreePersistence) Tree() *chunktree.Tree {
	return tp.tree
}
