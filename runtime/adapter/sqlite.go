package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	lumen "github.com/colin-oos/lumen-sub000"
	_ "modernc.org/sqlite"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parseSQLiteSpec splits "sqlite:<path>:<table>".  The table is after
// the last colon so that paths may contain colons.
func parseSQLiteSpec(spec string) (string, string, error) {
	rest := strings.TrimPrefix(spec, "sqlite:")
	k := strings.LastIndexByte(rest, ':')
	if k <= 0 {
		return "", "", fmt.Errorf("%s: expected sqlite:<path>:<table>", spec)
	}
	path, table := rest[:k], rest[k+1:]
	if !identRE.MatchString(table) {
		return "", "", fmt.Errorf("%s: invalid table name %q", spec, table)
	}
	return path, table, nil
}

func loadSQLite(ctx context.Context, path, table string) (lumen.List, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %q", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := lumen.List{}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for k := range vals {
		ptrs[k] = &vals[k]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(lumen.Record, 0, len(cols))
		for k, col := range cols {
			rec = append(rec, lumen.Field{Name: col, Value: fromSQL(vals[k])})
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func fromSQL(v any) lumen.Value {
	switch v := v.(type) {
	case nil:
		return lumen.Null{}
	case int64:
		return lumen.Int(v)
	case float64:
		return lumen.Float(v)
	case bool:
		return lumen.NewBool(v)
	case string:
		return lumen.Text(v)
	case []byte:
		return lumen.Text(v)
	case time.Time:
		return lumen.Text(v.UTC().Format(time.RFC3339Nano))
	}
	return lumen.Text(fmt.Sprint(v))
}
