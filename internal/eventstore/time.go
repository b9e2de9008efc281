package eventstore

import "time"

// nowFunc is overridden in tests that need deterministic timestamps.
var nowFunc = func() time.Time { return time.Now().UTC() }

// parseTimestamp normalizes the driver-specific representations returned
// for a TIMESTAMP column: pgx hands back time.Time, the sqlite3 driver
// hands back either a time.Time or an RFC3339 string depending on storage
// class.
func parseTimestamp(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	case []byte:
		parsed, err := time.Parse(time.RFC3339Nano, string(t))
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
