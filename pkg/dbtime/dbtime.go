//nolint:revive // exported
package dbtime

import "time"

// DBNow returns the current time normalized for storage.
func DBNow() time.Time {
	return DBTime(time.Now())
}

// DBTime normalizes a timestamp for storage. Everything persists as UTC.
func DBTime(t time.Time) time.Time {
	return t.UTC()
}

// ToMillis flattens a timestamp to Unix milliseconds for INTEGER columns.
func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// FromMillis restores a stored millisecond timestamp as UTC.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
