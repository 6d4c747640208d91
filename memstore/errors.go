package memstore

import "errors"

var (
	// ErrInvalidChunkIndex signals a chunk index of size 0.
	ErrInvalidChunkIndex = errors.New("memstore: invalid chunk index")
	// ErrLoad wraps failures of LoadStore.Load.
	ErrLoad = errors.New("memstore: cannot load chunk")
	// ErrStore wraps failures of LoadStore.Store.
	ErrStore = errors.New("memstore: cannot store chunk")
)
