package chunktree

import (
	"fmt"
	"io"
)

// Cursor iterates forward over the leaf spans of a tree, starting at an
// arbitrary byte position.
//
// A cursor is bound to the tree it has been created from. Later edits produce
// new trees and are not visible to the cursor. Cursors do not share state, so
// any number of them may be active on the same tree.
type Cursor struct {
	stack   []frame
	pending node   // next leaf to emit, if any
	skip    uint64 // bytes to drop from the front of pending
	pos     uint64 // byte position of the next span
}

type frame struct {
	inner *innerNode
	next  int // index of the next child to visit
}

// NewCursor creates a cursor positioned at byte position at. at may be equal
// to Len, which yields a cursor at end of content.
func (t *Tree) NewCursor(at uint64) (*Cursor, error) {
	if at > t.Len() {
		return nil, fmt.Errorf("%w: cursor at %d, length is %d", ErrIndexOutOfBounds, at, t.Len())
	}
	c := &Cursor{pos: at}
	if t.IsEmpty() || at == t.Len() {
		return c, nil
	}
	n := t.root
	for {
		inner, ok := n.(*innerNode)
		if !ok {
			break
		}
		i := 0
		for ; i < 3; i++ {
			clen := inner.child(i).len()
			if at < clen {
				break
			}
			at -= clen
		}
		assert(i < 3, "NewCursor: position not covered by children")
		c.stack = append(c.stack, frame{inner: inner, next: i + 1})
		n = inner.child(i)
	}
	c.pending, c.skip = n, at
	return c, nil
}

// Pos returns the byte position of the next span Next will return.
func (c *Cursor) Pos() uint64 {
	return c.pos
}

// Next returns the next non-empty span of bytes, or io.EOF at the end of
// content. Loading a lazy leaf may fail; the error is returned and Next may
// be retried.
//
// Clients must not modify the returned slice.
func (c *Cursor) Next() ([]byte, error) {
	for {
		if c.pending != nil {
			n := c.pending
			span, err := leafSpan(n)
			if err != nil {
				return nil, err
			}
			c.pending = nil
			span = span[c.skip:]
			c.skip = 0
			if len(span) == 0 {
				continue
			}
			c.pos += uint64(len(span))
			return span, nil
		}
		if len(c.stack) == 0 {
			return nil, io.EOF
		}
		top := &c.stack[len(c.stack)-1]
		if top.next >= 3 {
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}
		child := top.inner.child(top.next)
		top.next++
		for {
			inner, ok := child.(*innerNode)
			if !ok {
				break
			}
			c.stack = append(c.stack, frame{inner: inner, next: 1})
			child = inner.left
		}
		c.pending = child
	}
}

func leafSpan(n node) ([]byte, error) {
	switch n := n.(type) {
	case *leafNode:
		return n.data, nil
	case *lazyNode:
		leaf, err := n.fault()
		if err != nil {
			return nil, err
		}
		return leaf.data, nil
	}
	panic("leafSpan: not a leaf")
}
