/*
Package vbuf is the text-buffer engine of an editor: a single, editable byte
sequence, no matter whether it lives completely in memory or is drawn lazily
from a file far larger than memory.

Buffers

A Buffer holds the current root of a persistent ternary tree
(package chunktree). Every edit produces a new root which shares all untouched
subtrees with the previous one. Cursors and snapshots taken before an edit
therefore keep seeing the content they were created on, without any locking.

Small buffers keep their content in memory. Large buffers are backed by a
chunked persistence (package persistence), which faults in fixed-size chunks
from a backing store through a chunk cache (package memstore) and writes
modified chunks back on Flush.

Searching

Package search pulls overlapping windows from a ByteCursor, so that literal
and regular-expression search work on content of any size and report every
match exactly once, even if it straddles a window boundary. Buffer.Find and
Buffer.FindAll are convenience wrappers.

Errors

Positions outside of a buffer are a contract violation of the calling layer.
They are reported as errors wrapping chunktree.ErrIndexOutOfBounds and leave
the buffer unchanged. Failures of a backing store are reported as errors as
well; the tree is never left in a partially edited state.

_________________________________________________________________________

BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

*/
package vbuf

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to a global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// BufferError is an error type for the vbuf module
type BufferError string

func (e BufferError) Error() string {
	return string(e)
}

// ErrNotFlushable is flagged when a buffer without a backing store is asked
// to flush its content.
const ErrNotFlushable = BufferError("buffer has no backing store to flush to")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = BufferError("illegal arguments")
