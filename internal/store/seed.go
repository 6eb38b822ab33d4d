package store

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// Seed is the on-disk shape of an initial fleet snapshot.
type Seed struct {
	Drivers  []types.Driver  `json:"drivers"`
	Vehicles []types.Vehicle `json:"vehicles"`
	Trips    []types.Trip    `json:"trips"`
	Payouts  []types.Payout  `json:"payouts"`
}

// LoadSeed reads a YAML or JSON seed document and upserts every record.
// Returns the number of entities loaded.
func (s *Store) LoadSeed(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parse seed: %w", err)
	}

	var entities []types.Entity
	for i := range seed.Drivers {
		entities = append(entities, &seed.Drivers[i])
	}
	for i := range seed.Vehicles {
		entities = append(entities, &seed.Vehicles[i])
	}
	for i := range seed.Trips {
		entities = append(entities, &seed.Trips[i])
	}
	for i := range seed.Payouts {
		entities = append(entities, &seed.Payouts[i])
	}

	for i, e := range entities {
		if err := s.Upsert(e); err != nil {
			return i, fmt.Errorf("seed %s #%d: %w", e.Kind(), i, err)
		}
	}
	return len(entities), nil
}
