package keel

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies the runtime shape of a raw configuration value.
type Kind int

const (
	// KindNil is the absence of a value.
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMapping
)

// String returns the name used for this kind in validation messages.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// KindOf reports the Kind of a raw value. Unrecognized Go types map to
// KindNil for nil and are otherwise reported by their Go type name via
// kindName, so KindOf is only meaningful for raw document trees.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case bool:
		return KindBool
	case int, int64:
		return KindInt
	case float64, float32:
		return KindFloat
	case string:
		return KindString
	case []any:
		return KindList
	case *Mapping, map[string]any, map[any]any:
		return KindMapping
	}
	return KindNil
}

// kindName names a value's shape for messages, falling back to the Go
// type for values outside the raw document model.
func kindName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool, int, int64, float64, float32, string, []any, *Mapping, map[string]any, map[any]any:
		return KindOf(v).String()
	}
	return fmt.Sprintf("%T", v)
}

// formatValue renders a value for inclusion in a validation message.
// Strings are single-quoted, containers rendered recursively.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return "'" + t + "'"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Mapping:
		parts := make([]string, 0, t.Len())
		for _, k := range t.Keys() {
			parts = append(parts, fmt.Sprintf("'%s': %s", k, formatValue(t.MustGet(k))))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("%v", v)
}

// Mapping is a string-keyed mapping that preserves insertion order.
// It is the in-memory form of a parsed configuration document.
type Mapping struct {
	keys  []string
	items map[string]any
}

// NewMapping creates an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{items: make(map[string]any)}
}

// MappingOf creates a Mapping from alternating key/value pairs.
// It panics on an odd number of arguments or a non-string key; it is
// intended for schema defaults and tests.
func MappingOf(pairs ...any) *Mapping {
	if len(pairs)%2 != 0 {
		panic("keel: MappingOf requires an even number of arguments")
	}
	m := NewMapping()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("keel: MappingOf key %v is not a string", pairs[i]))
		}
		m.Set(key, pairs[i+1])
	}
	return m
}

// asMapping normalizes a raw value into a *Mapping if it is mapping-shaped.
// Plain map[string]any input is converted with sorted keys so behavior
// stays deterministic.
func asMapping(v any) (*Mapping, bool) {
	switch t := v.(type) {
	case *Mapping:
		return t, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, t[k])
		}
		return m, true
	case map[any]any:
		// Generic decoders produce these; accepted only when every key
		// is a string.
		keys := make([]string, 0, len(t))
		for k := range t {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			keys = append(keys, s)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, t[k])
		}
		return m, true
	}
	return nil, false
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (any, bool) {
	v, ok := m.items[key]
	return v, ok
}

// MustGet returns the value stored under key, or nil when absent.
func (m *Mapping) MustGet(key string) any {
	return m.items[key]
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// Set stores value under key, appending the key on first insertion.
func (m *Mapping) Set(key string, value any) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = value
}

// Delete removes key, preserving the relative order of the other keys.
func (m *Mapping) Delete(key string) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Copy returns a deep copy that shares no mutable containers with m.
func (m *Mapping) Copy() *Mapping {
	out := NewMapping()
	for _, k := range m.keys {
		out.Set(k, deepCopyValue(m.items[k]))
	}
	return out
}

// ToMap converts the mapping (recursively) to a plain map[string]any.
// Key order is lost; intended for interop and test assertions.
func (m *Mapping) ToMap() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = toPlain(m.items[k])
	}
	return out
}

func toPlain(v any) any {
	switch t := v.(type) {
	case *Mapping:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toPlain(e)
		}
		return out
	}
	return v
}

// deepCopyValue copies a raw value tree so that no mutable container is
// shared between original and copy. Scalars are returned as-is.
func deepCopyValue(v any) any {
	switch t := v.(type) {
	case *Mapping:
		return t.Copy()
	case *Config:
		return t.Copy()
	case *PluginCollection:
		return t.Copy()
	case map[string]any:
		m, _ := asMapping(t)
		return m.Copy()
	case map[any]any:
		if m, ok := asMapping(t); ok {
			return m.Copy()
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	}
	return v
}
