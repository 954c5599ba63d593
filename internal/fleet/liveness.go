package fleet

import "time"

// DefaultLivenessThreshold is how long a bin may stay silent before the
// admin surface reports it offline.
const DefaultLivenessThreshold = 30 * time.Second

// LivenessEvaluator decides online/offline from last-seen evidence. The
// threshold is fixed at construction so every read path in the process
// agrees on it.
type LivenessEvaluator struct {
	threshold time.Duration
}

// NewLivenessEvaluator creates an evaluator. A zero or negative threshold
// falls back to the default.
func NewLivenessEvaluator(threshold time.Duration) LivenessEvaluator {
	if threshold <= 0 {
		threshold = DefaultLivenessThreshold
	}
	return LivenessEvaluator{threshold: threshold}
}

// IsOnline reports whether a bin last seen at lastSeen (Unix seconds) is
// still considered online at now.
func (e LivenessEvaluator) IsOnline(lastSeen int64, now time.Time) bool {
	return now.Unix()-lastSeen <= int64(e.threshold.Seconds())
}

// ConnectionStatus returns the derived connection_status label.
func (e LivenessEvaluator) ConnectionStatus(lastSeen int64, now time.Time) string {
	if e.IsOnline(lastSeen, now) {
		return ConnOnline
	}
	return ConnOffline
}

// Threshold exposes the configured silence limit.
func (e LivenessEvaluator) Threshold() time.Duration {
	return e.threshold
}
