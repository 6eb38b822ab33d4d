package store

import (
	"fmt"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// ChangeEvent describes an upsert into the store.
type ChangeEvent struct {
	Type     types.EntityType
	ID       string
	Entity   types.Entity
	Replaced bool // true when an earlier snapshot with the same id existed
}

// OnChangeFunc is called after a write is visible to readers.
type OnChangeFunc func(event ChangeEvent)

// shard holds the snapshots of one entity type.
type shard struct {
	mu    sync.RWMutex
	byID  map[string]types.Entity
	order []string
}

// Store is a concurrent-safe in-memory store of fleet entity snapshots.
// Each entity type has its own lock: writes are exclusive per type, reads concurrent.
type Store struct {
	shards   map[types.EntityType]*shard
	onChange OnChangeFunc
}

// New creates an empty Store with an optional change callback.
func New(onChange OnChangeFunc) *Store {
	s := &Store{
		shards:   make(map[types.EntityType]*shard, len(types.EntityTypes())),
		onChange: onChange,
	}
	for _, t := range types.EntityTypes() {
		s.shards[t] = &shard{byID: make(map[string]types.Entity)}
	}
	return s
}

// SetOnChange installs the change callback. Must be called before concurrent use.
func (s *Store) SetOnChange(fn OnChangeFunc) {
	s.onChange = fn
}

func (s *Store) shard(t types.EntityType) (*shard, error) {
	sh, ok := s.shards[t]
	if !ok {
		return nil, &types.ValidationError{Field: "entityType", Reason: fmt.Sprintf("unknown entity type %q", t)}
	}
	return sh, nil
}

// Upsert replaces the snapshot for the entity's id. A replaced entity keeps its
// original insertion position.
func (s *Store) Upsert(e types.Entity) error {
	if e == nil {
		return &types.ValidationError{Field: "entity", Reason: "must not be nil"}
	}
	if e.EntityID() == "" {
		return &types.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	sh, err := s.shard(e.Kind())
	if err != nil {
		return err
	}

	sh.mu.Lock()
	_, replaced := sh.byID[e.EntityID()]
	if !replaced {
		sh.order = append(sh.order, e.EntityID())
	}
	sh.byID[e.EntityID()] = e
	sh.mu.Unlock()

	if s.onChange != nil {
		s.onChange(ChangeEvent{Type: e.Kind(), ID: e.EntityID(), Entity: e, Replaced: replaced})
	}
	return nil
}

// UpsertRaw decodes a JSON or YAML record of the given type and upserts it.
// Fields outside the entity's schema are ignored.
func (s *Store) UpsertRaw(t types.EntityType, data []byte) (types.Entity, error) {
	e, err := Decode(t, data)
	if err != nil {
		return nil, err
	}
	if err := s.Upsert(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Decode parses a JSON or YAML record into a typed entity.
func Decode(t types.EntityType, data []byte) (types.Entity, error) {
	e, err := types.NewEntity(t)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, e); err != nil {
		return nil, &types.ValidationError{Field: string(t), Reason: err.Error()}
	}
	return e, nil
}

// Get returns the current snapshot, or a NotFoundError.
func (s *Store) Get(t types.EntityType, id string) (types.Entity, error) {
	sh, err := s.shard(t)
	if err != nil {
		return nil, err
	}
	sh.mu.RLock()
	e, ok := sh.byID[id]
	sh.mu.RUnlock()
	if !ok {
		return nil, &types.NotFoundError{Kind: string(t), ID: id}
	}
	return e, nil
}

// List returns all entities of a type in insertion order. Unknown types yield nil.
func (s *Store) List(t types.EntityType) []types.Entity {
	sh, err := s.shard(t)
	if err != nil {
		return nil
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	result := make([]types.Entity, 0, len(sh.order))
	for _, id := range sh.order {
		result = append(result, sh.byID[id])
	}
	return result
}

// All returns every entity: drivers, vehicles, trips, then payouts.
func (s *Store) All() []types.Entity {
	var result []types.Entity
	for _, t := range types.EntityTypes() {
		result = append(result, s.List(t)...)
	}
	return result
}

// Count returns the number of entities of a type.
func (s *Store) Count(t types.EntityType) int {
	sh, err := s.shard(t)
	if err != nil {
		return 0
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return len(sh.byID)
}
