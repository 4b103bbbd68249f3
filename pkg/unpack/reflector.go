// Package unpack decodes JSON into Go values whose static types include
// interfaces.  Each concrete type that may appear behind an interface is
// registered with a Reflector, and a JSON object is mapped to a type by the
// value of the field tagged `unpack:""` in that type (typically "kind").
// The tag value, when non-empty, overrides the Go type name as the
// discriminator.
package unpack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

type Reflector struct {
	keys  []string
	types map[string]map[string]reflect.Type
}

func New(templates ...any) *Reflector {
	r := &Reflector{types: make(map[string]map[string]reflect.Type)}
	return r.Add(templates...)
}

// Add registers the type of each template, which must be a struct or a
// pointer to a struct with exactly one field tagged with unpack.
func (r *Reflector) Add(templates ...any) *Reflector {
	for _, t := range templates {
		typ := reflect.TypeOf(t)
		if typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		key, val, ok := discriminator(typ)
		if !ok {
			panic(fmt.Sprintf("unpack: type %s has no unpack tag", typ))
		}
		m, ok := r.types[key]
		if !ok {
			m = make(map[string]reflect.Type)
			r.types[key] = m
			r.keys = append(r.keys, key)
		}
		m[val] = typ
	}
	return r
}

func discriminator(typ reflect.Type) (string, string, bool) {
	if typ.Kind() != reflect.Struct {
		return "", "", false
	}
	for k := 0; k < typ.NumField(); k++ {
		f := typ.Field(k)
		val, ok := f.Tag.Lookup("unpack")
		if !ok {
			continue
		}
		if val == "" {
			val = typ.Name()
		}
		return jsonName(f), val, true
	}
	return "", "", false
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

// Unmarshal decodes the JSON in buf into the value pointed to by result.
func (r *Reflector) Unmarshal(buf []byte, result any) error {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	ptr := reflect.ValueOf(result)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return errors.New("unpack: result must be a non-nil pointer")
	}
	return r.decode(ptr.Elem(), raw)
}

func (r *Reflector) lookup(obj map[string]any) (reflect.Type, error) {
	for _, key := range r.keys {
		val, ok := obj[key].(string)
		if !ok {
			continue
		}
		if typ, ok := r.types[key][val]; ok {
			return typ, nil
		}
		return nil, fmt.Errorf("unpack: unknown %s %q", key, val)
	}
	return nil, errors.New("unpack: object has no type discriminator")
}

func (r *Reflector) decode(dst reflect.Value, raw any) error {
	if raw == nil {
		dst.SetZero()
		return nil
	}
	switch dst.Kind() {
	case reflect.Interface:
		obj, ok := raw.(map[string]any)
		if !ok {
			if dst.NumMethod() == 0 {
				dst.Set(reflect.ValueOf(raw))
				return nil
			}
			return fmt.Errorf("unpack: cannot decode %T into %s", raw, dst.Type())
		}
		typ, err := r.lookup(obj)
		if err != nil {
			return err
		}
		ptr := reflect.New(typ)
		if !ptr.Type().Implements(dst.Type()) {
			return fmt.Errorf("unpack: %s does not implement %s", ptr.Type(), dst.Type())
		}
		if err := r.decodeStruct(ptr.Elem(), obj); err != nil {
			return err
		}
		dst.Set(ptr)
	case reflect.Pointer:
		v := reflect.New(dst.Type().Elem())
		if err := r.decode(v.Elem(), raw); err != nil {
			return err
		}
		dst.Set(v)
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("unpack: expected object for %s", dst.Type())
		}
		return r.decodeStruct(dst, obj)
	case reflect.Slice:
		arr, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("unpack: expected array for %s", dst.Type())
		}
		s := reflect.MakeSlice(dst.Type(), len(arr), len(arr))
		for k, elem := range arr {
			if err := r.decode(s.Index(k), elem); err != nil {
				return err
			}
		}
		dst.Set(s)
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("unpack: expected string, found %T", raw)
		}
		dst.SetString(s)
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("unpack: expected bool, found %T", raw)
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := raw.(json.Number)
		if !ok {
			return fmt.Errorf("unpack: expected number, found %T", raw)
		}
		i, err := n.Int64()
		if err != nil {
			return fmt.Errorf("unpack: %w", err)
		}
		dst.SetInt(i)
	case reflect.Float32, reflect.Float64:
		n, ok := raw.(json.Number)
		if !ok {
			return fmt.Errorf("unpack: expected number, found %T", raw)
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("unpack: %w", err)
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("unpack: unsupported type %s", dst.Type())
	}
	return nil
}

func (r *Reflector) decodeStruct(dst reflect.Value, obj map[string]any) error {
	typ := dst.Type()
	for k := 0; k < typ.NumField(); k++ {
		f := typ.Field(k)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			// Untagged embedded structs have their fields promoted.
			if err := r.decodeStruct(dst.Field(k), obj); err != nil {
				return err
			}
			continue
		}
		raw, ok := obj[jsonName(f)]
		if !ok {
			continue
		}
		if err := r.decode(dst.Field(k), raw); err != nil {
			return fmt.Errorf("%s: %w", jsonName(f), err)
		}
	}
	return nil
}
