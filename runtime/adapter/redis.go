package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/go-redis/redis/v8"
)

// parseRedisSpec splits "redis://[:password@]addr/key".
func parseRedisSpec(spec string) (*redis.Options, string, error) {
	u, err := url.Parse(spec)
	if err != nil {
		return nil, "", err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, "", fmt.Errorf("%s: expected redis://<addr>/<key>", spec)
	}
	opts := &redis.Options{Addr: u.Host}
	if u.User != nil {
		opts.Username = u.User.Username()
		opts.Password, _ = u.User.Password()
	}
	return opts, key, nil
}

// loadRedis reads rows from a list of JSON objects (one per element) or
// from a string holding a JSON array.
func loadRedis(ctx context.Context, spec string) (lumen.List, error) {
	opts, key, err := parseRedisSpec(spec)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	defer client.Close()
	typ, err := client.Type(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	switch typ {
	case "list":
		elems, err := client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, err
		}
		rows := make(lumen.List, 0, len(elems))
		for _, elem := range elems {
			v, err := lumen.DecodeJSON([]byte(elem))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", spec, err)
			}
			rows = append(rows, v)
		}
		return rows, nil
	case "string":
		s, err := client.Get(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		v, err := lumen.DecodeJSON([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec, err)
		}
		rows, ok := v.(lumen.List)
		if !ok {
			return nil, fmt.Errorf("%s: expected a JSON array", spec)
		}
		return rows, nil
	case "none":
		return nil, fmt.Errorf("%s: no such key", spec)
	}
	return nil, fmt.Errorf("%s: unsupported redis type %q", spec, typ)
}
