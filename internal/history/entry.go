package history

import (
	"encoding/json"
	"maps"
	"time"
)

const timestampField = "timestamp"

// Entry is one client-defined history record. Fields are stored as sent,
// flattened alongside the server-assigned timestamp.
type Entry struct {
	Timestamp string
	Fields    map[string]any
}

func NewEntry(fields map[string]any, at time.Time) Entry {
	f := maps.Clone(fields)
	delete(f, timestampField)
	return Entry{
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Fields:    f,
	}
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+1)
	maps.Copy(out, e.Fields)
	out[timestampField] = e.Timestamp
	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, _ := raw[timestampField].(string)
	delete(raw, timestampField)
	e.Timestamp = ts
	e.Fields = raw
	return nil
}
