package vbuf

import (
	"io"

	"github.com/npillmayer/vbuf/chunktree"
)

// Reader returns a reader for the bytes of the buffer, starting at offset 0.
// The reader sees the content the buffer had when Reader was called.
func (b *Buffer) Reader() io.Reader {
	return &bufferReader{tree: b.p.Tree()}
}

type bufferReader struct {
	tree   *chunktree.Tree
	cursor *chunktree.Cursor
	span   []byte
}

func (br *bufferReader) Read(p []byte) (n int, err error) {
	if br.cursor == nil {
		if br.cursor, err = br.tree.NewCursor(0); err != nil {
			return 0, err
		}
	}
	for n < len(p) {
		if len(br.span) == 0 {
			if br.span, err = br.cursor.Next(); err != nil {
				if n > 0 && err == io.EOF {
					return n, nil
				}
				return n, err
			}
		}
		k := copy(p[n:], br.span)
		br.span = br.span[k:]
		n += k
	}
	return n, nil
}
