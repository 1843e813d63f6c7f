// Package store implements the durable local entity store: a named-collection
// record cache backed by SQLite. It is owned by the sync core; feature
// modules read through it and never touch persistence directly.
package store

import "time"

// Record is an opaque entity record: a unique id plus arbitrary
// entity-specific fields. Every record carries createdAt/updatedAt
// timestamps in RFC 3339 UTC.
type Record map[string]any

// ID returns the record's id, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// StringField returns a string field value, or "" when absent or not a string.
func (r Record) StringField(key string) string {
	v, _ := r[key].(string)
	return v
}

// NumberField returns a numeric field value. JSON round-trips numbers as
// float64; integers written directly are handled too.
func (r Record) NumberField(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Timestamp formats t the way the backend does.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
