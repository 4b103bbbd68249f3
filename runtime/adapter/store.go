package adapter

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
)

// LoadStore returns the rows of a store.  The config selects the source:
//
//	sqlite:<path>:<table>[#orderBy=<column>]
//	redis://[:password@]<addr>/<key>[#orderBy=<field>]
//	<path or URI>[#orderBy=<field>]
//
// The last form reads a JSON array through the storage engine.  Database
// rows are always sorted so that query results do not depend on how the
// database happens to return them.
func (r *Registry) LoadStore(ctx context.Context, name, config string) (lumen.List, error) {
	rows, err := r.load(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	return rows, nil
}

func (r *Registry) load(ctx context.Context, config string) (lumen.List, error) {
	source, orderBy := splitOrderBy(config)
	switch {
	case strings.HasPrefix(source, "sqlite:"):
		path, table, err := parseSQLiteSpec(source)
		if err != nil {
			return nil, err
		}
		if err := r.checkLocal(ctx, path); err != nil {
			return nil, err
		}
		rows, err := loadSQLite(ctx, path, table)
		if err != nil {
			return nil, err
		}
		return sortRows(rows, orderBy), nil
	case strings.HasPrefix(source, "redis://"):
		rows, err := loadRedis(ctx, source)
		if err != nil {
			return nil, err
		}
		return sortRows(rows, orderBy), nil
	}
	rows, err := r.loadJSON(ctx, source)
	if err != nil {
		return nil, err
	}
	if orderBy != "" {
		rows = sortRows(rows, orderBy)
	}
	return rows, nil
}

// checkLocal fails unless path is an existing local file the engine is
// allowed to read.  Opening a missing file would create an empty database.
func (r *Registry) checkLocal(ctx context.Context, path string) error {
	u, err := storage.ParseURI(path)
	if err != nil {
		return err
	}
	if u.SchemeOf() != storage.FileScheme {
		return fmt.Errorf("%s: sqlite database must be a local file", path)
	}
	ok, err := r.opts.Engine.Exists(ctx, u)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return nil
}

func splitOrderBy(config string) (string, string) {
	source, frag, ok := strings.Cut(config, "#")
	if !ok {
		return config, ""
	}
	col, ok := strings.CutPrefix(frag, "orderBy=")
	if !ok {
		return source, ""
	}
	return source, col
}

func (r *Registry) loadJSON(ctx context.Context, path string) (lumen.List, error) {
	u, err := storage.ParseURI(path)
	if err != nil {
		return nil, err
	}
	b, err := storage.Get(ctx, r.opts.Engine, u, r.opts.MaxRead)
	if err != nil {
		return nil, err
	}
	v, err := lumen.DecodeJSON(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rows, ok := v.(lumen.List)
	if !ok {
		return nil, fmt.Errorf("%s: expected a JSON array", path)
	}
	return rows, nil
}

// sortRows orders rows by the orderBy field if given, else by an "id"
// field, else by a "name" field, else by canonical serialization.  Ties
// fall back to canonical serialization.
func sortRows(rows lumen.List, orderBy string) lumen.List {
	key := orderBy
	if key == "" {
		switch {
		case hasField(rows, "id"):
			key = "id"
		case hasField(rows, "name"):
			key = "name"
		}
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b lumen.Value) int {
		if key != "" {
			if c := compareValues(field(a, key), field(b, key)); c != 0 {
				return c
			}
		}
		return strings.Compare(lumen.Format(a), lumen.Format(b))
	})
	return out
}

func hasField(rows lumen.List, name string) bool {
	for _, row := range rows {
		if rec, ok := row.(lumen.Record); ok {
			if _, ok := rec.Get(name); ok {
				return true
			}
		}
	}
	return false
}

func field(row lumen.Value, name string) lumen.Value {
	if rec, ok := row.(lumen.Record); ok {
		if v, ok := rec.Get(name); ok {
			return v
		}
	}
	return lumen.Null{}
}

// compareValues orders numbers numerically and texts lexically.  Other
// values, and values of different kinds, compare by serialization.
func compareValues(a, b lumen.Value) int {
	if i, ok := a.(lumen.Int); ok {
		if j, ok := b.(lumen.Int); ok {
			return cmp.Compare(i, j)
		}
	}
	x, xok := number(a)
	y, yok := number(b)
	if xok && yok {
		return cmp.Compare(x, y)
	}
	s, sok := a.(lumen.Text)
	t, tok := b.(lumen.Text)
	if sok && tok {
		return strings.Compare(string(s), string(t))
	}
	return strings.Compare(lumen.Format(a), lumen.Format(b))
}

func number(v lumen.Value) (float64, bool) {
	switch v := v.(type) {
	case lumen.Int:
		return float64(v), true
	case lumen.Float:
		return float64(v), true
	}
	return 0, false
}
