package vbuf

import (
	"errors"
	"io"

	"github.com/npillmayer/vbuf/chunktree"
)

// ByteCursor iterates forward over the bytes of a buffer.
//
// A cursor reads the content the buffer had when the cursor was created.
// Cursors are independent of each other and never modify the buffer. If
// loading a chunk fails, the cursor stops and reports the error via Err,
// similar to bufio.Scanner.
type ByteCursor struct {
	c    *chunktree.Cursor
	span []byte
	i    int
	pos  uint64
	err  error
}

// Next returns the next byte, or false at the end of content or on error.
func (bc *ByteCursor) Next() (byte, bool) {
	for bc.i >= len(bc.span) {
		if bc.c == nil || bc.err != nil {
			return 0, false
		}
		span, err := bc.c.Next()
		if errors.Is(err, io.EOF) {
			bc.c = nil
			return 0, false
		} else if err != nil {
			bc.err = err
			return 0, false
		}
		bc.span, bc.i = span, 0
	}
	b := bc.span[bc.i]
	bc.i++
	bc.pos++
	return b, true
}

// Offset returns the position of the byte Next will return.
func (bc *ByteCursor) Offset() uint64 {
	return bc.pos
}

// Err returns the error which stopped the cursor, if any.
func (bc *ByteCursor) Err() error {
	return bc.err
}
