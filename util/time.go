package util

import (
	"fmt"
	"time"
)

// SecondsToHuman returns human readable time format, e.g. "3d 04h 05m 06s".
// Leading zero units are omitted.
func SecondsToHuman(duration uint64) string {
	days := duration / 86400
	duration %= 86400
	hours := duration / 3600
	duration %= 3600
	minutes := duration / 60
	seconds := duration % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%02dh %02dm %02ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%02dm %02ds", minutes, seconds)
	default:
		return fmt.Sprintf("%02ds", seconds)
	}
}

// DurationToHuman formats d truncated to whole seconds. Negative durations read as zero.
func DurationToHuman(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return SecondsToHuman(uint64(d / time.Second))
}
