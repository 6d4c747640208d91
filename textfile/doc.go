/*
Package textfile opens files on disk as chunked byte buffers.

A FileStore serves chunks of an *os.File to a persistence.ChunkedPersistence.
Opening a file does not read its content: chunks are read on demand when an
edit or a cursor touches them, and Flush writes the modified region back.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package textfile

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to the global core-tracer
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}
