package lumen

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
)

// DecodeJSON decodes a single JSON value into a Lumen value.  Object keys
// become record fields in sorted order so that rows loaded from different
// sources with the same content format identically.
func DecodeJSON(b []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return FromJSON(v), nil
}

// FromJSON converts a value produced by encoding/json (decoded with
// UseNumber) into a Lumen value.
func FromJSON(v any) Value {
	switch v := v.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(v)
	case json.Number:
		if i, err := v.Int64(); err == nil && !strings.ContainsAny(v.String(), ".eE") {
			return Int(i)
		}
		f, _ := v.Float64()
		return Float(f)
	case float64:
		return Float(v)
	case string:
		return Text(v)
	case []any:
		out := make(List, 0, len(v))
		for _, elem := range v {
			out = append(out, FromJSON(elem))
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rec := make(Record, 0, len(keys))
		for _, k := range keys {
			rec = append(rec, Field{k, FromJSON(v[k])})
		}
		return rec
	}
	return Null{}
}

// ToJSON converts a Lumen value into a form encoding/json can marshal.
// Constructor values become {"tag":..., "values":[...]} and signals become
// their sentinel text.
func ToJSON(v Value) any {
	switch v := v.(type) {
	case nil, Null:
		return nil
	case Int:
		return int64(v)
	case Float:
		return float64(v)
	case Text:
		return string(v)
	case Bool:
		return bool(v)
	case List:
		return toJSONSlice(v)
	case Tuple:
		return toJSONSlice(v)
	case Record:
		m := make(map[string]any, len(v))
		for _, f := range v {
			m[f.Name] = ToJSON(f.Value)
		}
		return m
	case *Ctor:
		return map[string]any{"tag": v.Tag, "values": toJSONSlice(v.Values)}
	case Signal:
		return v.Sentinel()
	}
	return Format(v)
}

func toJSONSlice(vals []Value) []any {
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		out = append(out, ToJSON(v))
	}
	return out
}
