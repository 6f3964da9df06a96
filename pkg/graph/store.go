package graph

// PositionStore remembers the last committed position of every node in one
// view scope, so a rebuild triggered by new data or a resize seeds from where
// nodes already are instead of reshuffling the layout. Each view level
// (overview, one drill-down) owns its own store; stores are never shared.
//
// Single logical owner per view instance: reads happen during the model
// build, writes during simulation ticks and drag. No locking needed.
type PositionStore struct {
	positions map[string]Vec
}

// NewPositionStore returns an empty store.
func NewPositionStore() *PositionStore {
	return &PositionStore{positions: make(map[string]Vec)}
}

// Get returns the stored position for id and whether one exists.
func (s *PositionStore) Get(id string) (Vec, bool) {
	v, ok := s.positions[id]
	return v, ok
}

// Set commits a position for id.
func (s *PositionStore) Set(id string, pos Vec) {
	s.positions[id] = pos
}

// Clear drops all stored positions.
func (s *PositionStore) Clear() {
	s.positions = make(map[string]Vec)
}

// Len returns the number of stored positions.
func (s *PositionStore) Len() int {
	return len(s.positions)
}
