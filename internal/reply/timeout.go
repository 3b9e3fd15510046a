package reply

import "time"

const (
	MinSendTimeout = time.Second
	MaxSendTimeout = 60 * time.Second

	DefaultOperationTimeout = 30 * time.Second
)

// EffectiveTimeout clamps the configured operation timeout into
// [MinSendTimeout, MaxSendTimeout].
func EffectiveTimeout(configured time.Duration) time.Duration {
	return max(MinSendTimeout, min(MaxSendTimeout, configured))
}
