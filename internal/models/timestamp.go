package models

import (
	"bytes"
	"encoding/json"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is an ISO-8601 instant as written by the web client. Empty,
// null or malformed values decode to the zero time so that one bad record
// does not fail a whole collection.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// epoch milliseconds
		var ms int64
		if err := json.Unmarshal(b, &ms); err == nil {
			t.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		t.Time = time.Time{}
		return nil
	}

	t.Time = time.Time{}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			break
		}
	}

	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}
