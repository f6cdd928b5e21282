package execution

import "coredb/types"

// MemorySource is an OpIterator over a fixed in-memory slice of tuples,
// the operator-tree equivalent of a literal VALUES list or a fixture used
// to seed a test without first building a HeapFile. Every tuple must
// already match schema.
type MemorySource struct {
	schema *types.Schema
	tuples []*types.Tuple
	pos    int
	opened bool
}

// NewMemorySource builds a MemorySource over tuples, all expected to
// share schema.
func NewMemorySource(schema *types.Schema, tuples []*types.Tuple) *MemorySource {
	return &MemorySource{schema: schema, tuples: tuples}
}

// Open resets iteration to the first tuple.
func (m *MemorySource) Open() error {
	m.pos = 0
	m.opened = true
	return nil
}

// HasNext reports whether another tuple remains.
func (m *MemorySource) HasNext() (bool, error) {
	return m.opened && m.pos < len(m.tuples), nil
}

// Next returns the next tuple.
func (m *MemorySource) Next() (*types.Tuple, error) {
	t := m.tuples[m.pos]
	m.pos++
	return t, nil
}

// Rewind restarts iteration from the first tuple.
func (m *MemorySource) Rewind() error {
	m.pos = 0
	return nil
}

// Close marks the source closed; Open reopens it.
func (m *MemorySource) Close() { m.opened = false }

// Schema returns the source's fixed schema.
func (m *MemorySource) Schema() *types.Schema { return m.schema }

// Children returns nil: MemorySource is a leaf.
func (m *MemorySource) Children() []OpIterator { return nil }

// SetChildren is a no-op for a leaf operator.
func (m *MemorySource) SetChildren(children []OpIterator) {}
