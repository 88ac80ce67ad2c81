package shared

import "time"

// NowMillis returns the current time as a millisecond epoch, the unit the
// platform uses for every timestamp it sends.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts a millisecond epoch to a local time. Zero stays zero.
func MillisToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ts)
}

// FormatMillis renders a millisecond epoch for log lines. Empty for zero so
// items without a deadline don't print 1970.
func FormatMillis(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.UnixMilli(ts).Format("2006-01-02 15:04:05")
}

// DeadlinePassed reports whether a millisecond-epoch deadline is in the past.
// A zero deadline never passes.
func DeadlinePassed(deadline int64, now time.Time) bool {
	if deadline == 0 {
		return false
	}
	return deadline < now.UnixMilli()
}
