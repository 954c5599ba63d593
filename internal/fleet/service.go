package fleet

import (
	"log"
	"time"
)

// Notifier receives fleet events fanned out by the service. Both methods
// are fire-and-forget from the service's point of view: a slow or failing
// notifier must never fail the reporting gateway's request, so they are
// invoked outside any registry lock.
type Notifier interface {
	// BinUpdated is called after every accepted status report, with the
	// freshly shaped admin view of the bin.
	BinUpdated(data AdminBinData)

	// BinBecameFull is called only on a transition into the full status.
	BinBecameFull(data AdminBinData)
}

// Service composes the registry and the liveness evaluator into the
// operations exposed at the HTTP boundary. It performs no business logic
// beyond routing, status-transition detection and response shaping.
type Service struct {
	registry  *Registry
	liveness  LivenessEvaluator
	notifiers []Notifier
	clock     func() time.Time
}

// NewService wires a service. Passing no notifiers disables fan-out.
func NewService(registry *Registry, liveness LivenessEvaluator, notifiers ...Notifier) *Service {
	return &Service{
		registry:  registry,
		liveness:  liveness,
		notifiers: notifiers,
		clock:     time.Now,
	}
}

// RecordStatusReport ingests a gateway status report. Never fails: unknown
// bins are created, out-of-range fill levels are clamped.
func (s *Service) RecordStatusReport(binID string, fillPercentage int, timestamp int64) BinRecord {
	record, prevStatus := s.registry.UpsertOnStatus(binID, fillPercentage, timestamp)

	log.Printf("🗑️  Bin status for %s: fill=%d%%, status=%s, last seen=%s",
		binID, record.FillLevel, record.Status, time.Unix(record.LastSeen, 0).Format(time.RFC3339))

	data := record.ToAdminData(s.liveness.ConnectionStatus(record.LastSeen, s.clock()))
	for _, n := range s.notifiers {
		n.BinUpdated(data)
		if record.Status == StatusFull && prevStatus != StatusFull {
			n.BinBecameFull(data)
		}
	}
	return record
}

// RecordHeartbeat ingests a liveness-only signal. Unknown ids yield
// ErrUnknownBin; heartbeats never create records.
func (s *Service) RecordHeartbeat(binID string, timestamp int64) error {
	if err := s.registry.TouchHeartbeat(binID, timestamp); err != nil {
		log.Printf("⚠️  Heartbeat for unknown bin_id %s, ignoring", binID)
		return err
	}
	return nil
}

// MarkMaintenance is the manual out-of-band status path. Maintenance is
// not sticky: the next status report from the bin overwrites it.
func (s *Service) MarkMaintenance(binID string) (AdminBinData, error) {
	record, err := s.registry.SetMaintenance(binID)
	if err != nil {
		return AdminBinData{}, err
	}

	data := record.ToAdminData(s.liveness.ConnectionStatus(record.LastSeen, s.clock()))
	for _, n := range s.notifiers {
		n.BinUpdated(data)
	}
	return data, nil
}

// AdminView returns the point-in-time admin representation of every bin,
// keyed by bin id, with connection status derived against a single read of
// the clock.
func (s *Service) AdminView() map[string]AdminBinData {
	readTime := s.clock()
	records := s.registry.SnapshotAll()

	view := make(map[string]AdminBinData, len(records))
	for _, record := range records {
		view[record.ID] = record.ToAdminData(s.liveness.ConnectionStatus(record.LastSeen, readTime))
	}
	return view
}
