package textfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/vbuf"
	"github.com/npillmayer/vbuf/memstore"
	"github.com/npillmayer/vbuf/persistence"
)

/*
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

// ErrNotRegular is returned when opening directories, devices and the like.
var ErrNotRegular = errors.New("textfile: not a regular file")

// Some constants for chunk size defaults
const (
	twoKb     = 2048
	sixKb     = 6144
	tenKb     = 10240
	hundredKb = 102400
	oneMb     = 1048576
)

// DefaultChunkSize returns a chunk size suitable for a file of size bytes.
func DefaultChunkSize(size uint64) uint64 {
	switch {
	case size < 1024:
		return 64
	case size < tenKb:
		return 256
	case size < hundredKb:
		return 512
	case size < oneMb:
		return twoKb
	}
	return sixKb
}

// FileStore is a backing store for chunked buffers over an OS file.
// It implements memstore.LoadStore, persistence.Sizer and persistence.Truncater.
type FileStore struct {
	file *os.File
}

var _ memstore.LoadStore = (*FileStore)(nil)
var _ persistence.Sizer = (*FileStore)(nil)
var _ persistence.Truncater = (*FileStore)(nil)

// NewFileStore wraps an open file. The caller stays responsible for closing f.
func NewFileStore(f *os.File) *FileStore {
	return &FileStore{file: f}
}

// Load reads up to size bytes at offset. It returns nil if offset is at or
// beyond the end of the file.
func (fs *FileStore) Load(offset, size uint64) ([]byte, error) {
	buf := make([]byte, size)
	n, err := fs.file.ReadAt(buf, int64(offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return buf[:n], nil
}

// Store writes data at offset, growing the file if necessary.
func (fs *FileStore) Store(offset uint64, data []byte) error {
	_, err := fs.file.WriteAt(data, int64(offset))
	return err
}

// Size returns the current size of the file.
func (fs *FileStore) Size() (uint64, error) {
	fi, err := fs.file.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(fi.Size()), nil
}

// Truncate shortens the file to size bytes.
func (fs *FileStore) Truncate(size uint64) error {
	return fs.file.Truncate(int64(size))
}

// File is a buffer editing the content of an OS file.
type File struct {
	*vbuf.Buffer
	name  string
	store *FileStore
}

// Open opens a regular file for reading and writing. Modifications of the
// buffer are written back to the file by Flush.
//
// A chunkSize of 0 lets Open choose a chunk size by the size of the file.
// Options are handed to the chunked persistence, e.g. for subscribing to
// chunk events.
func Open(name string, chunkSize uint64, opts ...persistence.Option) (*File, error) {
	return open(name, os.O_RDWR, chunkSize, opts)
}

// OpenReadOnly opens a regular file for reading. Flushing a modified buffer
// will fail.
func OpenReadOnly(name string, chunkSize uint64, opts ...persistence.Option) (*File, error) {
	return open(name, os.O_RDONLY, chunkSize, opts)
}

func open(name string, flag int, chunkSize uint64, opts []persistence.Option) (*File, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	} else if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, name)
	}
	f, err := os.OpenFile(name, flag, 0)
	if err != nil {
		return nil, err
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize(uint64(fi.Size()))
	}
	store := NewFileStore(f)
	buf, err := vbuf.NewChunked(store, chunkSize, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	tracer().Infof("textfile: opened %s, %d bytes in chunks of %d", name, fi.Size(), chunkSize)
	return &File{Buffer: buf, name: name, store: store}, nil
}

// Name returns the name of the file as given to Open.
func (f *File) Name() string {
	return f.name
}

// Close closes the underlying file without flushing. Cursors and snapshots
// of the buffer must not be used after Close.
func (f *File) Close() error {
	return f.store.file.Close()
}
