/*
Package persistence binds persistent byte trees to their storage.

A Persistence holds the current root of a chunktree.Tree and replaces it on
every edit. TreePersistence keeps the complete content in memory and is meant
for small buffers. ChunkedPersistence draws the content of large buffers from
a backing store through a memstore.Store: the tree starts out as a sequence of
lazy leaves, one per chunk, and only the chunks touched by edits or reads are
ever loaded. Flush writes the modified region back.

Clients interested in chunk faults, flushes or I/O failures may pass a
broadcaster (github.com/guiguan/caster) to NewChunked and subscribe to it.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package persistence

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}
