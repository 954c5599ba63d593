package fleet

// Bin operational status, derived from fill level on every status report.
// "maintenance" is never derived here; it only enters through seed data or
// the manager override, and the next status report replaces it.
const (
	StatusActive      = "active"
	StatusFull        = "full"
	StatusMaintenance = "maintenance"
)

// Connection status, derived at read time from last_seen.
const (
	ConnOnline  = "online"
	ConnOffline = "offline"
)

// FullThreshold is the fill percentage at which a bin counts as full.
const FullThreshold = 90

// BinRecord is the authoritative state for one physical bin. The zero
// value is not usable; records are created by the registry or the seed.
type BinRecord struct {
	ID               string
	Name             string
	Location         string
	Lat              float64
	Lng              float64
	Status           string
	FillLevel        int
	LastEmptied      string
	TotalCollections int
	LastSeen         int64 // Unix timestamp of the most recent report or heartbeat
}

// AdminBinData is the wire shape served to the admin dashboard.
type AdminBinData struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Location          string  `json:"location"`
	Lat               float64 `json:"lat"`
	Lng               float64 `json:"lng"`
	Status            string  `json:"status"`
	FillLevel         int     `json:"fillLevel"`
	LastEmptied       string  `json:"lastEmptied"`
	TotalCollections  int     `json:"totalCollections"`
	ConnectionStatus  string  `json:"connection_status"`
	LastSeenTimestamp int64   `json:"last_seen_timestamp"`
}

// ClampFill forces a reported fill percentage into [0, 100]. Out-of-range
// input is a recoverable condition, never an error.
func ClampFill(fill int) int {
	if fill < 0 {
		return 0
	}
	if fill > 100 {
		return 100
	}
	return fill
}

// StatusForFill maps a stored fill percentage to the derived status.
func StatusForFill(fill int) string {
	if fill >= FullThreshold {
		return StatusFull
	}
	return StatusActive
}

// ToAdminData shapes a record for the admin surface. connStatus is derived
// by the caller against the read-time clock, not taken from the record.
func (b *BinRecord) ToAdminData(connStatus string) AdminBinData {
	return AdminBinData{
		ID:                b.ID,
		Name:              b.Name,
		Location:          b.Location,
		Lat:               b.Lat,
		Lng:               b.Lng,
		Status:            b.Status,
		FillLevel:         b.FillLevel,
		LastEmptied:       b.LastEmptied,
		TotalCollections:  b.TotalCollections,
		ConnectionStatus:  connStatus,
		LastSeenTimestamp: b.LastSeen,
	}
}
