package types

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Mapping is uniform read access to a structured value: JSON-like maps,
// ordered maps, other string-keyed Go maps and structs.
type Mapping interface {
	// Keys returns the keys in a deterministic order.
	Keys() []string
	// Get returns the value stored under the exact key.
	Get(key string) (interface{}, bool)
}

// AsMapping returns a Mapping view of v, or false if v is not structured.
func AsMapping(v interface{}) (Mapping, bool) {
	switch val := v.(type) {
	case map[string]interface{}:
		return plainMap(val), true
	case *OrderedMap:
		return val, true
	case Mapping:
		return val, true
	}
	if KindOf(v) != KindObject {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return reflectMap{rv}, true
	case reflect.Struct:
		return newStructMapping(rv), true
	}
	return nil, false
}

// IsExplicitMap reports whether v is an explicit key/value container
// (an OrderedMap) rather than a record-like value.
func IsExplicitMap(v interface{}) bool {
	_, ok := v.(*OrderedMap)
	return ok
}

type plainMap map[string]interface{}

func (m plainMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m plainMap) Get(key string) (interface{}, bool) {
	v, ok := m[key]
	return v, ok
}

type reflectMap struct{ rv reflect.Value }

func (m reflectMap) Keys() []string {
	keys := make([]string, 0, m.rv.Len())
	for _, k := range m.rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

func (m reflectMap) Get(key string) (interface{}, bool) {
	v := m.rv.MapIndex(reflect.ValueOf(key).Convert(m.rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return Normalize(v.Interface()), true
}

// structMapping exposes exported struct fields under their JSON names.
type structMapping struct {
	rv     reflect.Value
	names  []string
	fields map[string]int
}

func newStructMapping(rv reflect.Value) *structMapping {
	t := rv.Type()
	sm := &structMapping{rv: rv, fields: make(map[string]int, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		sm.names = append(sm.names, name)
		sm.fields[name] = i
	}
	return sm
}

func (s *structMapping) Keys() []string {
	return s.names
}

func (s *structMapping) Get(key string) (interface{}, bool) {
	i, ok := s.fields[key]
	if !ok {
		return nil, false
	}
	return Normalize(s.rv.Field(i).Interface()), true
}

// OrderedMap is an explicit key/value container that preserves insertion order.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap creates an empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]interface{})}
}

// Keys returns the keys in insertion order.
func (o *OrderedMap) Keys() []string {
	return o.keys
}

// Get retrieves a value by key.
func (o *OrderedMap) Get(key string) (interface{}, bool) {
	value, ok := o.values[key]
	return value, ok
}

// Set inserts or replaces key. A new key goes to the end.
func (o *OrderedMap) Set(key string, value interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Delete removes key.
func (o *OrderedMap) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (o *OrderedMap) Len() int {
	return len(o.keys)
}

// MarshalJSON preserves key order during marshaling.
func (o *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valueBytes, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return []byte(buf.String()), nil
}
