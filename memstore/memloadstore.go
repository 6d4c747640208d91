package memstore

// MemLoadStore is a LoadStore over an in-memory byte slice. It is useful as
// a scratch backing store and as a test double.
type MemLoadStore struct {
	data   []byte
	Writes int // number of Store calls
}

// NewMemLoadStore creates a backing store holding a copy of data.
func NewMemLoadStore(data []byte) *MemLoadStore {
	return &MemLoadStore{data: append([]byte(nil), data...)}
}

// Load returns a copy of the bytes in [offset, offset+size), or nil if the
// store holds nothing at offset.
func (m *MemLoadStore) Load(offset, size uint64) ([]byte, error) {
	if offset >= uint64(len(m.data)) {
		return nil, nil
	}
	end := min(offset+size, uint64(len(m.data)))
	return append([]byte(nil), m.data[offset:end]...), nil
}

// Store writes data at offset, growing the store if necessary. A gap between
// the current end and offset is filled with zeros.
func (m *MemLoadStore) Store(offset uint64, data []byte) error {
	m.Writes++
	if end := offset + uint64(len(data)); end > uint64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-uint64(len(m.data)))...)
	}
	copy(m.data[offset:], data)
	return nil
}

// Size returns the number of bytes held.
func (m *MemLoadStore) Size() (uint64, error) {
	return uint64(len(m.data)), nil
}

// Truncate shortens the store to size bytes.
func (m *MemLoadStore) Truncate(size uint64) error {
	if size < uint64(len(m.data)) {
		m.data = m.data[:size]
	}
	return nil
}

// Bytes returns the content of the store. Clients must not modify it.
func (m *MemLoadStore) Bytes() []byte {
	return m.data
}
