package body

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetricSet is a mapping from metric id to MetricDef that remembers
// declaration order. The body's default metric falls back to the first
// declared metric, so the order a JSON document declares its metrics in
// is significant; a plain Go map would lose it.
type MetricSet struct {
	order []string
	defs  map[string]MetricDef
}

// NewMetricSet builds a MetricSet from (id, def) pairs in the given order.
func NewMetricSet(ids []string, defs map[string]MetricDef) MetricSet {
	m := MetricSet{defs: make(map[string]MetricDef, len(ids))}
	for _, id := range ids {
		def, ok := defs[id]
		if !ok {
			continue
		}
		m.order = append(m.order, id)
		m.defs[id] = def
	}
	return m
}

// Len returns the number of declared metrics
func (m MetricSet) Len() int {
	return len(m.order)
}

// IDs returns the metric ids in declaration order
func (m MetricSet) IDs() []string {
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// Get returns the definition for a metric id
func (m MetricSet) Get(id string) (MetricDef, bool) {
	def, ok := m.defs[id]
	return def, ok
}

// UnmarshalJSON decodes a JSON object, preserving key order.
// null and missing decode to an empty set.
func (m *MetricSet) UnmarshalJSON(data []byte) error {
	*m = MetricSet{}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metrics: expected object, got %v", tok)
	}

	m.defs = make(map[string]MetricDef)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metrics: expected string key, got %v", keyTok)
		}

		var def MetricDef
		if err := dec.Decode(&def); err != nil {
			return fmt.Errorf("metrics: metric %q: %w", key, err)
		}

		if _, dup := m.defs[key]; !dup {
			m.order = append(m.order, key)
		}
		m.defs[key] = def
	}

	// Consume closing '}'
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the set as a JSON object in declaration order
func (m MetricSet) MarshalJSON() ([]byte, error) {
	if len(m.order) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.defs[id])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
