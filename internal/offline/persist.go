package offline

import (
	"encoding/json"
	"fmt"

	"prepkit-sync-server/internal/domain"
)

const (
	stateKey = "offline_state"

	// schemaVersion guards the persisted blob layout. Bump on breaking
	// changes; older blobs are rejected rather than misread.
	schemaVersion = 1
)

// persistedState is the explicit serialization boundary: the in-memory maps
// are persisted as entry arrays so the blob layout does not depend on map
// encoding behavior.
type persistedState struct {
	SchemaVersion int                    `json:"schema_version"`
	Modules       []moduleEntry          `json:"modules"`
	Drills        []drillEntry           `json:"drills"`
	Alerts        []alertEntry           `json:"alerts"`
	Contacts      []contactEntry         `json:"contacts"`
	Settings      Settings               `json:"settings"`
	Queue         []domain.SyncOperation `json:"queue"`
}

type moduleEntry struct {
	ID     string `json:"id"`
	Module Module `json:"module"`
}

type drillEntry struct {
	ID    string `json:"id"`
	Drill Drill  `json:"drill"`
}

type alertEntry struct {
	ID    string `json:"id"`
	Alert Alert  `json:"alert"`
}

type contactEntry struct {
	ID      string  `json:"id"`
	Contact Contact `json:"contact"`
}

// persisted encodes the current state. Caller must hold the lock.
func (s *Store) persisted() ([]byte, error) {
	ps := persistedState{
		SchemaVersion: schemaVersion,
		Modules:       make([]moduleEntry, 0, len(s.modules)),
		Drills:        make([]drillEntry, 0, len(s.drills)),
		Alerts:        make([]alertEntry, 0, len(s.alerts)),
		Contacts:      make([]contactEntry, 0, len(s.contacts)),
		Settings:      s.settings,
		Queue:         s.queue.snapshot(),
	}
	for id, m := range s.modules {
		ps.Modules = append(ps.Modules, moduleEntry{ID: id, Module: m})
	}
	for id, d := range s.drills {
		ps.Drills = append(ps.Drills, drillEntry{ID: id, Drill: d})
	}
	for id, a := range s.alerts {
		ps.Alerts = append(ps.Alerts, alertEntry{ID: id, Alert: a})
	}
	for id, c := range s.contacts {
		ps.Contacts = append(ps.Contacts, contactEntry{ID: id, Contact: c})
	}
	return json.Marshal(ps)
}

// restore rehydrates the maps from a persisted blob. Caller must hold the
// lock (or be the constructor).
func (s *Store) restore(data []byte) error {
	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return fmt.Errorf("failed to decode offline state: %w", err)
	}
	if ps.SchemaVersion != schemaVersion {
		return fmt.Errorf("unsupported offline state schema version %d", ps.SchemaVersion)
	}
	for _, e := range ps.Modules {
		s.modules[e.ID] = e.Module
	}
	for _, e := range ps.Drills {
		s.drills[e.ID] = e.Drill
	}
	for _, e := range ps.Alerts {
		s.alerts[e.ID] = e.Alert
	}
	for _, e := range ps.Contacts {
		s.contacts[e.ID] = e.Contact
	}
	s.settings = ps.Settings
	s.queue.ops = ps.Queue
	return nil
}
