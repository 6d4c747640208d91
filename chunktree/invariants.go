package chunktree

import "fmt"

// Check validates structural tree invariants: every internal node caches the
// sum of its children's lengths, and no child is missing.
//
// Check does not load lazy leaves. It is meant to be used in tests.
func (t *Tree) Check() error {
	if t == nil || t.root == nil {
		return fmt.Errorf("%w: nil tree", ErrInvariant)
	}
	_, err := checkNode(t.root)
	return err
}

func checkNode(n node) (uint64, error) {
	switch n := n.(type) {
	case *leafNode:
		return n.len(), nil
	case *lazyNode:
		if n.src == nil {
			return 0, fmt.Errorf("%w: lazy leaf without source", ErrInvariant)
		}
		if n.src.Len() != n.size {
			return 0, fmt.Errorf("%w: lazy leaf size %d, source announces %d",
				ErrInvariant, n.size, n.src.Len())
		}
		return n.size, nil
	case *innerNode:
		var total uint64
		for i := range 3 {
			c := n.child(i)
			if c == nil {
				return 0, fmt.Errorf("%w: nil child at index %d", ErrInvariant, i)
			}
			l, err := checkNode(c)
			if err != nil {
				return 0, err
			}
			total += l
		}
		if total != n.size {
			return 0, fmt.Errorf("%w: cached size %d, children hold %d", ErrInvariant, n.size, total)
		}
		return total, nil
	}
	return 0, fmt.Errorf("%w: unknown node type %T", ErrInvariant, n)
}
