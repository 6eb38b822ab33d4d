// Package store provides the concurrent-safe in-memory EntityStore holding the
// authoritative snapshot of every fleet entity.
//
// # Contract
//
// Entities are keyed by (type, id). An upsert replaces the current snapshot for
// that id; records are never deleted, only superseded.
//
// Thread safety: each entity type is a separate shard behind its own sync.RWMutex,
// so a write to drivers never blocks readers of vehicles.
//
// # Methods
//
//	Upsert(e types.Entity) error
//	  - Replaces the snapshot for e.EntityID(). Insertion position is preserved.
//
//	UpsertRaw(t types.EntityType, data []byte) (types.Entity, error)
//	  - Decodes JSON or YAML, ignoring unknown fields, then upserts.
//
//	Get(t types.EntityType, id string) (types.Entity, error)
//	  - Returns *types.NotFoundError when absent.
//
//	List(t types.EntityType) []types.Entity
//	  - Insertion order.
//
//	LoadSeed(r io.Reader) (int, error)
//	  - Bulk-loads a {drivers, vehicles, trips, payouts} document.
//
// # Callback
//
// The optional OnChange callback fires after every Upsert, once the write is
// visible to readers. The evaluation pipeline uses it to schedule re-evaluation
// of the changed entity.
package store
