// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Data is an associative mapping of keys to arbitrary values. Integer keys are
// carried as their decimal string, so {0:"x"} is Data{"0": "x"}.
type Data map[string]any

// Shape declares how a Data value should be treated when it is normalized.
type Shape int

const (
	// Keyed data is a plain mapping. Values are never de-duplicated.
	Keyed Shape = iota
	// List data behaves as an indexed list. Values are de-duplicated before
	// the data is persisted.
	List
)

func (s Shape) String() string {
	if s == List {
		return "list"
	}
	return "keyed"
}

// FromList builds list shaped Data from values, keyed 0..n-1.
func FromList(values ...any) Data {
	d := make(Data, len(values))
	for i, v := range values {
		d[strconv.Itoa(i)] = v
	}
	return d
}

// Keys returns the keys of d in natural order: integer keys first, compared
// numerically, then the remaining keys compared lexically.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// SortKeys sorts keys in place in natural order.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return LessKey(keys[i], keys[j])
	})
}

// LessKey reports whether key a sorts before key b in natural order.
func LessKey(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

// Clone returns a deep copy of d. Nested Data, maps and slices are copied,
// other values are shared. A nil d clones to an empty, non-nil Data.
func (d Data) Clone() Data {
	c := make(Data, len(d))
	for k, v := range d {
		c[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Data:
		return val.Clone()
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case []any:
		if val == nil {
			return val
		}
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	case []string:
		if val == nil {
			return val
		}
		s := make([]string, len(val))
		copy(s, val)
		return s
	}
	return v
}

// Unique drops values that repeat an earlier value, walking keys in natural
// order so the first occurrence wins. Values are compared by their string
// form, so 1 and "1" are duplicates.
func (d Data) Unique() Data {
	seen := make(map[string]struct{}, len(d))
	out := make(Data, len(d))
	for _, k := range d.Keys() {
		v := d[k]
		id := stringOf(v)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out[k] = v
	}
	return out
}

// Normalize prepares d for persistence. List shaped data is de-duplicated.
// Ordering is carried by Keys and MarshalJSON, so the result is always
// sorted when it is read back or encoded.
func (d Data) Normalize(shape Shape) Data {
	if shape == List {
		return d.Unique()
	}
	return d.Clone()
}

// Filter returns a copy of d without falsy values. When keepZero is true
// numeric zeros and "0" survive.
func (d Data) Filter(keepZero bool) Data {
	out := make(Data, len(d))
	for k, v := range d {
		if keepZero && (isNumber(v) || v == "0") {
			out[k] = v
			continue
		}
		if IsFalsy(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// IsFalsy reports whether v is an empty string, a numeric zero, nil, false,
// an empty map, or an empty slice.
func IsFalsy(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == "" || t == "0"
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isNumber(v any) bool {
	if _, ok := v.(json.Number); ok {
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	if isNumber(v) {
		return fmt.Sprint(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// MarshalJSON writes d as a JSON object with keys in natural order.
func (d Data) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(d[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
