/*
Package memstore implements a chunk cache between an editor buffer and its
backing store.

A backing store is addressed in fixed-size, offset-aligned chunks. The cache
loads a chunk on first access, keeps it in memory, and tracks which chunks
differ from the backing store. Modified chunks are written back by StoreAll,
which is the only way mutations reach the backing store.

The cache does not own the backing store and is not safe for concurrent use.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package memstore

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}
