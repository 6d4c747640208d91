package chunktree

import (
	"bytes"
	"fmt"
	"io"
)

// Tree is a persistent ternary tree over a byte sequence.
//
// A tree is never modified after construction. Insert and Remove return new
// trees, sharing all unaffected subtrees with the receiver.
type Tree struct {
	cfg  Config
	root node
}

// Source delivers the bytes of a lazy leaf.
//
// Len must be known before the leaf is loaded. Fetch is called whenever the
// leaf's bytes are needed and should memoize if loading is expensive. Callers
// must not modify the returned slice.
type Source interface {
	Len() uint64
	Fetch() ([]byte, error)
}

type node interface {
	len() uint64
}

// leafNode holds a contiguous byte span. The span is shared between trees and
// must never be written to.
type leafNode struct {
	data []byte
}

// lazyNode is a leaf whose bytes live in a Source until they are needed.
type lazyNode struct {
	src  Source
	size uint64
}

// innerNode combines three ordered children; size caches the sum of their lengths.
type innerNode struct {
	left, mid, right node
	size             uint64
}

var emptyLeaf = &leafNode{}

func (l *leafNode) len() uint64  { return uint64(len(l.data)) }
func (l *lazyNode) len() uint64  { return l.size }
func (n *innerNode) len() uint64 { return n.size }

func (n *innerNode) child(i int) node {
	switch i {
	case 0:
		return n.left
	case 1:
		return n.mid
	}
	return n.right
}

func newInner(left, mid, right node) *innerNode {
	return &innerNode{
		left:  left,
		mid:   mid,
		right: right,
		size:  left.len() + mid.len() + right.len(),
	}
}

// fault loads the bytes of a lazy leaf and returns them as a plain leaf.
func (l *lazyNode) fault() (*leafNode, error) {
	data, err := l.src.Fetch()
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) != l.size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrSourceMismatch, l.size, len(data))
	}
	return &leafNode{data: data}, nil
}

// fromSlice halves data at its midpoint until every part fits into a leaf.
// Leaves alias data.
func fromSlice(data []byte, width int) node {
	if len(data) == 0 {
		return emptyLeaf
	}
	if len(data) <= width {
		return &leafNode{data: data}
	}
	m := len(data) / 2
	return &innerNode{
		left:  fromSlice(data[:m], width),
		mid:   emptyLeaf,
		right: fromSlice(data[m:], width),
		size:  uint64(len(data)),
	}
}

func fromSources(srcs []Source) node {
	switch len(srcs) {
	case 0:
		return emptyLeaf
	case 1:
		return &lazyNode{src: srcs[0], size: srcs[0].Len()}
	}
	m := len(srcs) / 2
	return newInner(fromSources(srcs[:m]), emptyLeaf, fromSources(srcs[m:]))
}

// --- Construction ----------------------------------------------------------

// New creates an empty tree.
func New(cfg Config) *Tree {
	return &Tree{cfg: cfg.normalized(), root: emptyLeaf}
}

// FromBytes creates a tree holding a copy of data. Leaves hold at most
// cfg.Width bytes.
func FromBytes(cfg Config, data []byte) *Tree {
	cfg = cfg.normalized()
	buf := append([]byte(nil), data...)
	return &Tree{cfg: cfg, root: fromSlice(buf, cfg.Width)}
}

// FromSources creates a tree of lazy leaves, one per source, in the given order.
// No source is fetched during construction.
func FromSources(cfg Config, srcs ...Source) *Tree {
	return &Tree{cfg: cfg.normalized(), root: fromSources(srcs)}
}

// Config returns the configuration the tree has been built with.
func (t *Tree) Config() Config {
	return t.cfg
}

// Len returns the number of bytes in the tree.
func (t *Tree) Len() uint64 {
	if t == nil || t.root == nil {
		return 0
	}
	return t.root.len()
}

// IsEmpty reports whether the tree holds no bytes.
func (t *Tree) IsEmpty() bool {
	return t.Len() == 0
}

// Depth returns the number of levels of the tree, where a single leaf has depth 1.
func (t *Tree) Depth() int {
	if t == nil || t.root == nil {
		return 0
	}
	return depth(t.root)
}

func depth(n node) int {
	inner, ok := n.(*innerNode)
	if !ok {
		return 1
	}
	return 1 + max(depth(inner.left), depth(inner.mid), depth(inner.right))
}

// --- Editing ---------------------------------------------------------------

// Insert inserts data at byte position index and returns the resulting tree.
// If index is greater than the length of t, ErrIndexOutOfBounds is returned.
//
// data is copied; t remains unchanged.
func (t *Tree) Insert(index uint64, data []byte) (*Tree, error) {
	if index > t.Len() {
		return nil, fmt.Errorf("%w: insert at %d, length is %d", ErrIndexOutOfBounds, index, t.Len())
	}
	ins := fromSlice(append([]byte(nil), data...), t.cfg.Width)
	root, err := insertNode(t.root, index, ins, t.cfg.Width)
	if err != nil {
		return nil, err
	}
	T().Debugf("chunktree: inserted %d bytes at %d", len(data), index)
	return &Tree{cfg: t.cfg, root: root}, nil
}

func insertNode(n node, index uint64, ins node, width int) (node, error) {
	switch n := n.(type) {
	case *leafNode:
		assert(index <= n.len(), "insertNode: index exceeds leaf")
		return newInner(fromSlice(n.data[:index], width), ins, fromSlice(n.data[index:], width)), nil
	case *lazyNode:
		leaf, err := n.fault()
		if err != nil {
			return nil, err
		}
		return insertNode(leaf, index, ins, width)
	case *innerNode:
		ll, ml := n.left.len(), n.mid.len()
		switch {
		case index <= ll:
			left, err := insertNode(n.left, index, ins, width)
			if err != nil {
				return nil, err
			}
			return newInner(left, n.mid, n.right), nil
		case index <= ll+ml:
			mid, err := insertNode(n.mid, index-ll, ins, width)
			if err != nil {
				return nil, err
			}
			return newInner(n.left, mid, n.right), nil
		case index <= n.size:
			right, err := insertNode(n.right, index-ll-ml, ins, width)
			if err != nil {
				return nil, err
			}
			return newInner(n.left, n.mid, right), nil
		}
		return nil, fmt.Errorf("%w: insert at %d, node size is %d", ErrIndexOutOfBounds, index, n.size)
	}
	panic("insertNode: unknown node type")
}

// Remove deletes the byte range [start, end) and returns the resulting tree.
//
// Removing an empty range from an empty tree is a no-op. Otherwise start must
// be less than the length of t and end must not exceed it, or
// ErrIndexOutOfBounds is returned.
func (t *Tree) Remove(start, end uint64) (*Tree, error) {
	if end < start {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrIllegalRange, start, end)
	}
	size := t.Len()
	if size == 0 && start == end {
		return &Tree{cfg: t.cfg, root: emptyLeaf}, nil
	}
	if start >= size || end > size {
		return nil, fmt.Errorf("%w: remove [%d, %d), length is %d", ErrIndexOutOfBounds, start, end, size)
	}
	root, err := removeNode(t.root, start, end, t.cfg.Width)
	if err != nil {
		return nil, err
	}
	T().Debugf("chunktree: removed [%d, %d)", start, end)
	return &Tree{cfg: t.cfg, root: root}, nil
}

func removeNode(n node, start, end uint64, width int) (node, error) {
	switch n := n.(type) {
	case *leafNode:
		assert(start < n.len() && end <= n.len(), "removeNode: range exceeds leaf")
		return newInner(fromSlice(n.data[:start], width), emptyLeaf, fromSlice(n.data[end:], width)), nil
	case *lazyNode:
		leaf, err := n.fault()
		if err != nil {
			return nil, err
		}
		return removeNode(leaf, start, end, width)
	case *innerNode:
		if start > n.size {
			return n, nil
		}
		children := [3]node{n.left, n.mid, n.right}
		var offset uint64
		for i, c := range children {
			clen := c.len()
			s := min(start-min(start, offset), clen)
			e := min(end-min(end, offset), clen)
			if s < e {
				child, err := removeNode(c, s, e, width)
				if err != nil {
					return nil, err
				}
				children[i] = child
			}
			offset += clen
		}
		r := newInner(children[0], children[1], children[2])
		assert(r.size == n.size-(min(end, n.size)-min(start, n.size)), "removeNode: size mismatch after remove")
		return r, nil
	}
	panic("removeNode: unknown node type")
}

// --- Reading ---------------------------------------------------------------

// Bytes collects the complete content of the tree into a new byte slice.
// This may be an expensive operation, and for lazy trees it loads every leaf.
func (t *Tree) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(t.Len()))
	if _, err := t.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the content of the tree to w, leaf by leaf.
// WriteTo implements io.WriterTo.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	var n int64
	if t == nil || t.root == nil {
		return 0, nil
	}
	err := eachSpan(t.root, func(span []byte) error {
		k, err := w.Write(span)
		n += int64(k)
		return err
	})
	return n, err
}

// eachSpan visits the leaf spans below n in order, loading lazy leaves.
func eachSpan(n node, f func([]byte) error) error {
	switch n := n.(type) {
	case *leafNode:
		if len(n.data) == 0 {
			return nil
		}
		return f(n.data)
	case *lazyNode:
		leaf, err := n.fault()
		if err != nil {
			return err
		}
		return eachSpan(leaf, f)
	case *innerNode:
		for i := range 3 {
			if err := eachSpan(n.child(i), f); err != nil {
				return err
			}
		}
		return nil
	}
	panic("eachSpan: unknown node type")
}

// each walks the nodes of a tree in pre-order, with their start position and depth.
func (t *Tree) each(f func(n node, pos uint64, depth int) error) error {
	return walk(t.root, 0, 0, f)
}

func walk(n node, pos uint64, depth int, f func(node, uint64, int) error) error {
	if err := f(n, pos, depth); err != nil {
		return err
	}
	if inner, ok := n.(*innerNode); ok {
		for i := range 3 {
			c := inner.child(i)
			if err := walk(c, pos, depth+1, f); err != nil {
				return err
			}
			pos += c.len()
		}
	}
	return nil
}
