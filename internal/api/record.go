package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is a schema-less backend row. It remembers the key order of the JSON
// object it was decoded from so tables can be rendered with columns in the
// order the backend sent them.
//
// Values are held as raw JSON and decoded on read, so numeric ids are never
// rounded through float64.
type Record struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

// Set adds or replaces a field, appending new keys at the end. Values that
// cannot be encoded as JSON are stored as their printed form.
func (r *Record) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, json.RawMessage]()
	}
	raw, err := json.Marshal(value)
	if err != nil {
		raw, _ = json.Marshal(fmt.Sprint(value))
	}
	r.fields.Set(key, raw)
}

// Keys returns the field names in decode order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return []string{}
	}
	out := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Get returns the decoded value for key. Numbers decode as json.Number.
func (r Record) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	raw, ok := r.fields.Get(key)
	if !ok {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw), true
	}
	return v, true
}

// String renders a field for display. Missing and null fields render empty.
func (r Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		raw, _ := r.fields.Get(key)
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	}
}

// ID returns the row identifier. Entry tables use entry_id; target_list uses id.
func (r Record) ID() (string, bool) {
	for _, key := range []string{"entry_id", "id"} {
		if s := r.String(key); s != "" {
			return s, true
		}
	}
	return "", false
}

// MarshalJSON writes the fields in their recorded order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// UnmarshalJSON reads a JSON object, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("record: expected JSON object")
	}
	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	r.fields = fields
	return nil
}
