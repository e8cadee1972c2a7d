// Package mstime converts between time.Time and the millisecond timestamps
// carried by block headers
package mstime

import "time"

// Now returns the current time truncated to millisecond precision
func Now() time.Time {
	return UnixMilliToTime(TimeToUnixMilli(time.Now()))
}

// UnixMilliToTime returns the UTC time of a header timestamp
func UnixMilliToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// TimeToUnixMilli returns t as a header timestamp
func TimeToUnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}
