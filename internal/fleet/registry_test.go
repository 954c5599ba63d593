package fleet

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestClampFill(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-50, 0},
		{-1, 0},
		{0, 0},
		{45, 45},
		{100, 100},
		{101, 100},
		{250, 100},
	}
	for _, c := range cases {
		if got := ClampFill(c.in); got != c.want {
			t.Errorf("ClampFill(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestStatusForFill(t *testing.T) {
	cases := []struct {
		fill int
		want string
	}{
		{0, StatusActive},
		{10, StatusActive},
		{89, StatusActive},
		{90, StatusFull},
		{95, StatusFull},
		{100, StatusFull},
	}
	for _, c := range cases {
		if got := StatusForFill(c.fill); got != c.want {
			t.Errorf("StatusForFill(%d) = %q, want %q", c.fill, got, c.want)
		}
	}
}

func TestUpsertCreatesWithPlaceholderMetadata(t *testing.T) {
	r := NewRegistry()

	record, _ := r.UpsertOnStatus("D07", 55, 1700000000)

	if record.Name != "New Bin D07" {
		t.Errorf("name = %q, want placeholder", record.Name)
	}
	if record.Location != "Unknown Location" {
		t.Errorf("location = %q, want placeholder", record.Location)
	}
	if record.Lat != 0 || record.Lng != 0 {
		t.Errorf("coordinates = (%v, %v), want (0, 0)", record.Lat, record.Lng)
	}
	if record.TotalCollections != 0 {
		t.Errorf("total collections = %d, want 0", record.TotalCollections)
	}
	if record.FillLevel != 55 || record.Status != StatusActive {
		t.Errorf("fill/status = %d/%s, want 55/active", record.FillLevel, record.Status)
	}
	if record.LastSeen != 1700000000 {
		t.Errorf("last seen = %d, want payload timestamp stored verbatim", record.LastSeen)
	}
}

func TestUpsertClampsOutOfRangeFill(t *testing.T) {
	r := NewRegistry()

	record, _ := r.UpsertOnStatus("A01", 150, 1)
	if record.FillLevel != 100 {
		t.Errorf("fill = %d, want clamped to 100", record.FillLevel)
	}
	if record.Status != StatusFull {
		t.Errorf("status = %q, want full at clamped 100", record.Status)
	}

	record, _ = r.UpsertOnStatus("A01", -20, 2)
	if record.FillLevel != 0 {
		t.Errorf("fill = %d, want clamped to 0", record.FillLevel)
	}
	if record.Status != StatusActive {
		t.Errorf("status = %q, want active at clamped 0", record.Status)
	}
}

func TestUpsertIsIdempotentExceptLastSeen(t *testing.T) {
	r := NewRegistry()

	first, _ := r.UpsertOnStatus("A01", 70, 100)
	second, _ := r.UpsertOnStatus("A01", 70, 200)

	if second.LastSeen != 200 {
		t.Errorf("last seen = %d, want latest call's timestamp", second.LastSeen)
	}
	second.LastSeen = first.LastSeen
	if first != second {
		t.Errorf("repeated identical report changed the record: %+v vs %+v", first, second)
	}
}

func TestHeartbeatUnknownBinDoesNotCreate(t *testing.T) {
	r := NewRegistry()

	err := r.TouchHeartbeat("Z99", 1700000000)
	if !errors.Is(err, ErrUnknownBin) {
		t.Fatalf("heartbeat for unknown bin: err = %v, want ErrUnknownBin", err)
	}
	if r.Count() != 0 {
		t.Errorf("registry has %d bins after unknown heartbeat, want 0", r.Count())
	}
}

func TestHeartbeatTouchesOnlyLastSeen(t *testing.T) {
	r := NewRegistry()
	r.UpsertOnStatus("A01", 95, 100)

	if err := r.TouchHeartbeat("A01", 500); err != nil {
		t.Fatalf("heartbeat for known bin failed: %v", err)
	}

	record, err := r.Get("A01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.LastSeen != 500 {
		t.Errorf("last seen = %d, want 500", record.LastSeen)
	}
	if record.FillLevel != 95 || record.Status != StatusFull {
		t.Errorf("heartbeat changed fill/status: %d/%s", record.FillLevel, record.Status)
	}
}

func TestMaintenanceOverwrittenByNextReport(t *testing.T) {
	r := NewRegistry()
	r.UpsertOnStatus("C05", 10, 100)

	if _, err := r.SetMaintenance("C05"); err != nil {
		t.Fatalf("SetMaintenance: %v", err)
	}
	record, _ := r.Get("C05")
	if record.Status != StatusMaintenance {
		t.Fatalf("status = %q, want maintenance", record.Status)
	}

	// Maintenance is not sticky: the next report rederives the status.
	record, prev := r.UpsertOnStatus("C05", 10, 200)
	if prev != StatusMaintenance {
		t.Errorf("previous status = %q, want maintenance", prev)
	}
	if record.Status != StatusActive {
		t.Errorf("status after report = %q, want active", record.Status)
	}
}

func TestSnapshotAllSortedAndCopied(t *testing.T) {
	r := NewRegistry()
	r.UpsertOnStatus("B03", 90, 1)
	r.UpsertOnStatus("A01", 45, 1)
	r.UpsertOnStatus("C05", 10, 1)

	records := r.SnapshotAll()
	if len(records) != 3 {
		t.Fatalf("snapshot has %d records, want 3", len(records))
	}
	for i, want := range []string{"A01", "B03", "C05"} {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, want)
		}
	}

	// Mutating the snapshot must not leak into the registry.
	records[0].FillLevel = 99
	fresh, _ := r.Get("A01")
	if fresh.FillLevel != 45 {
		t.Errorf("registry fill = %d after snapshot mutation, want 45", fresh.FillLevel)
	}
}

func TestConcurrentReportsDifferentBins(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			binID := fmt.Sprintf("BIN-%02d", i)
			for ts := int64(1); ts <= 50; ts++ {
				r.UpsertOnStatus(binID, int(ts*2), ts)
				r.SnapshotAll()
			}
		}(i)
	}
	wg.Wait()

	records := r.SnapshotAll()
	if len(records) != 20 {
		t.Fatalf("snapshot has %d records, want 20", len(records))
	}
	for _, record := range records {
		if record.FillLevel != 100 || record.LastSeen != 50 {
			t.Errorf("%s ended at fill=%d last_seen=%d, want 100/50", record.ID, record.FillLevel, record.LastSeen)
		}
	}
}

func TestSeedSkipsExistingRecords(t *testing.T) {
	r := NewRegistry()
	r.UpsertOnStatus("A01", 77, 42)

	SeedBins(r)

	record, _ := r.Get("A01")
	if record.FillLevel != 77 {
		t.Errorf("seed overwrote live record: fill = %d, want 77", record.FillLevel)
	}
	if r.Count() != 3 {
		t.Errorf("registry has %d bins after seed, want 3", r.Count())
	}
	c05, err := r.Get("C05")
	if err != nil {
		t.Fatalf("C05 not seeded: %v", err)
	}
	if c05.Status != StatusMaintenance {
		t.Errorf("C05 status = %q, want maintenance from seed data", c05.Status)
	}
}
