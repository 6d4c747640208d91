/*
Package chunktree implements a persistent, structurally shared ternary tree
over byte data.

Every internal node has three children: left, mid and right. Left and right
hold the content on either side of an edit point, mid holds the content
inserted at that point (or is empty, e.g. after a removal). Editing a tree
never modifies existing nodes. Insert and Remove return a new tree which
shares every untouched subtree with the old one, so old trees stay valid
snapshots for as long as a client holds on to them.

Leaves built from a byte slice hold at most Config.Width bytes. This is a
construction-time bound only: leaves created by Insert and Remove are not
re-split, and the tree is not rebalanced after edits.

	Operation     |   Cost
	--------------+--------------------
	FromBytes     |   O(n)
	Len           |   O(1)
	Insert        |   O(depth + |data|)
	Remove        |   O(depth + touched nodes)
	Bytes         |   O(n)

Leaves may be lazy: they know their length up front and fetch their bytes
from a Source on first use. This lets large backing stores be edited while
only the chunks touched by an edit are ever loaded.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package chunktree

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
