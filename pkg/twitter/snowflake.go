package twitter

import (
	"strconv"
	"time"

	"github.com/iconidentify/xclip/internal/domain"
)

// SnowflakeEpochMillis is the platform's id epoch (2010-11-04T01:42:54.657Z).
const SnowflakeEpochMillis = 1288834974657

// Media uploaded in this window was stored in a broken container and has to
// be remuxed before it plays everywhere.
var (
	containerBugStart = time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	containerBugEnd   = time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC)
)

// SnowflakeTime decodes the creation time embedded in a snowflake id.
func SnowflakeTime(id string) (time.Time, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(n>>22) + SnowflakeEpochMillis).UTC(), true
}

// NeedsContainerFix reports whether m falls in the broken-container window.
// Ids that do not parse never need fixing.
func NeedsContainerFix(m domain.MediaDescriptor) bool {
	ts, ok := SnowflakeTime(m.SnowflakeID())
	if !ok {
		return false
	}
	return ts.After(containerBugStart) && ts.Before(containerBugEnd)
}
