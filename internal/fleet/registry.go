package fleet

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBin is returned for operations that refuse to create a record,
// currently only heartbeats.
var ErrUnknownBin = errors.New("bin id not found")

// Registry owns the in-memory map from bin id to record. The map itself is
// guarded by an RWMutex; each record carries its own lock so updates to
// different bin ids never contend. Records are created lazily on the first
// status report and never deleted.
type Registry struct {
	mu   sync.RWMutex
	bins map[string]*binEntry
}

type binEntry struct {
	mu     sync.Mutex
	record BinRecord
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bins: make(map[string]*binEntry),
	}
}

// entryFor returns the entry for binID, creating it with placeholder
// display metadata when create is set.
func (r *Registry) entryFor(binID string, create bool) *binEntry {
	r.mu.RLock()
	entry, ok := r.bins[binID]
	r.mu.RUnlock()
	if ok || !create {
		return entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another writer may have raced us between the RUnlock and Lock.
	if entry, ok := r.bins[binID]; ok {
		return entry
	}
	entry = &binEntry{
		record: BinRecord{
			ID:               binID,
			Name:             fmt.Sprintf("New Bin %s", binID),
			Location:         "Unknown Location",
			Lat:              0,
			Lng:              0,
			Status:           StatusActive,
			LastEmptied:      "N/A",
			TotalCollections: 0,
		},
	}
	r.bins[binID] = entry
	return entry
}

// UpsertOnStatus records a status report. Unknown bins are created with
// placeholder metadata. The fill percentage is clamped before storage, the
// status is rederived, and last_seen is set to the payload timestamp
// verbatim. Returns the updated record and its status before the update.
func (r *Registry) UpsertOnStatus(binID string, fillPercentage int, timestamp int64) (BinRecord, string) {
	entry := r.entryFor(binID, true)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	prevStatus := entry.record.Status
	entry.record.FillLevel = ClampFill(fillPercentage)
	entry.record.Status = StatusForFill(entry.record.FillLevel)
	entry.record.LastSeen = timestamp
	return entry.record, prevStatus
}

// TouchHeartbeat updates last_seen for a known bin. Heartbeats alone never
// create records; an unknown id yields ErrUnknownBin.
func (r *Registry) TouchHeartbeat(binID string, timestamp int64) error {
	entry := r.entryFor(binID, false)
	if entry == nil {
		return ErrUnknownBin
	}

	entry.mu.Lock()
	entry.record.LastSeen = timestamp
	entry.mu.Unlock()
	return nil
}

// SetMaintenance marks a known bin as under maintenance. The next status
// report overwrites this, matching the derivation rules.
func (r *Registry) SetMaintenance(binID string) (BinRecord, error) {
	entry := r.entryFor(binID, false)
	if entry == nil {
		return BinRecord{}, ErrUnknownBin
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.record.Status = StatusMaintenance
	return entry.record, nil
}

// Seed installs a record wholesale if the id is not already present. Used
// for out-of-band initialization data at startup.
func (r *Registry) Seed(record BinRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bins[record.ID]; ok {
		return
	}
	r.bins[record.ID] = &binEntry{record: record}
}

// Get returns a copy of one record.
func (r *Registry) Get(binID string) (BinRecord, error) {
	entry := r.entryFor(binID, false)
	if entry == nil {
		return BinRecord{}, ErrUnknownBin
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.record, nil
}

// SnapshotAll returns a copy of every record, sorted by bin id. Each copy
// is taken under the record's own lock, so no reader observes a record
// mid-update. Connection status is derived by the caller against the
// clock at snapshot time.
func (r *Registry) SnapshotAll() []BinRecord {
	r.mu.RLock()
	entries := make([]*binEntry, 0, len(r.bins))
	for _, entry := range r.bins {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	records := make([]BinRecord, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		records = append(records, entry.record)
		entry.mu.Unlock()
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	return records
}

// Count returns the number of known bins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bins)
}
