/*
Package search finds patterns in byte sequences of unbounded length.

Instead of materializing the whole sequence, an OverlappingChunks iterator
pulls fixed-size windows from a ByteSource. Consecutive windows overlap by a
configurable number of bytes, so a match straddling a window boundary is
completely contained in one of them. Each window carries a valid zone: bytes
before ChunkInfo.ValidStart have already been scanned as the tail of the
previous window. Searching the whole window, but accepting only matches which
end after ValidStart, reports every match exactly once:

	Window 1: [------------ valid -----------]
	Window 2:                   [overlap][---- valid ----]
	Window 3:                                     [overlap][-- valid --]

For a pattern of length L the overlap must be at least L-1.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package search

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}
