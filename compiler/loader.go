// Package compiler loads Lumen programs from storage into Sid-stamped
// syntax trees ready for the checker, the formatter, or the runtime.
package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/colin-oos/lumen-sub000/compiler/ast"
	"github.com/colin-oos/lumen-sub000/compiler/parser"
	"github.com/colin-oos/lumen-sub000/compiler/sid"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"github.com/hashicorp/golang-lru/arc/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultCacheSize = 256

// Loader reads, parses, and stamps program sources.  Parsed files are
// cached by the hash of their content, so reloading an unchanged file
// (e.g., on every request to a long-running service) skips the parser.
// Each call returns a tree of its own that the caller may modify.
type Loader struct {
	Engine storage.Engine
	Cache  *arc.ARCCache[string, *ast.Program]
	Logger *zap.Logger
	// MaxRead caps the size of each source.  Zero means no limit.
	MaxRead int64
}

func NewLoader(engine storage.Engine) *Loader {
	cache, err := arc.NewARC[string, *ast.Program](DefaultCacheSize)
	if err != nil {
		panic(err)
	}
	return &Loader{
		Engine: engine,
		Cache:  cache,
		Logger: zap.NewNop(),
	}
}

type source struct {
	name string
	src  []byte
}

// Load reads each path through the storage engine and returns a single
// program holding the declarations of every file in argument order.
// Files are read and parsed concurrently.  Effects declared in any file
// are visible in all of them.
func (l *Loader) Load(ctx context.Context, paths ...string) (*ast.Program, error) {
	sources := make([]source, len(paths))
	group, gctx := errgroup.WithContext(ctx)
	for k, path := range paths {
		group.Go(func() error {
			u, err := storage.ParseURI(path)
			if err != nil {
				return err
			}
			b, err := storage.Get(gctx, l.Engine, u, l.MaxRead)
			if err != nil {
				return err
			}
			sources[k] = source{path, b}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return l.parse(ctx, sources)
}

// LoadSource is like Load for a program held in memory.
func (l *Loader) LoadSource(ctx context.Context, name string, src []byte) (*ast.Program, error) {
	return l.parse(ctx, []source{{name, src}})
}

func (l *Loader) parse(ctx context.Context, sources []source) (*ast.Program, error) {
	var effects []string
	for _, s := range sources {
		// A scan error resurfaces with a position when the file is parsed.
		declared, _ := parser.DeclaredEffects(s.src)
		effects = append(effects, declared...)
	}
	slices.Sort(effects)
	effects = slices.Compact(effects)
	progs := make([]*ast.Program, len(sources))
	group, _ := errgroup.WithContext(ctx)
	for k, s := range sources {
		group.Go(func() error {
			p, err := l.parseFile(s, effects)
			progs[k] = p
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if len(progs) == 1 {
		return progs[0], nil
	}
	merged := &ast.Program{Kind: "Program"}
	for _, p := range progs {
		merged.Decls = append(merged.Decls, p.Decls...)
	}
	id := sid.Assign(merged)
	l.Logger.Debug("program loaded", zap.String("sid", id), zap.Int("files", len(progs)))
	return merged, nil
}

func (l *Loader) parseFile(s source, effects []string) (*ast.Program, error) {
	key := cacheKey(s.src, effects)
	if l.Cache != nil {
		if p, ok := l.Cache.Get(key); ok {
			l.Logger.Debug("source cache hit", zap.String("file", s.name))
			return ast.Copy(p).(*ast.Program), nil
		}
	}
	p, err := parser.Parse(s.name, s.src, effects...)
	if err != nil {
		return nil, err
	}
	sid.Assign(p)
	if l.Cache != nil {
		l.Cache.Add(key, ast.Copy(p).(*ast.Program))
	}
	return p, nil
}

// cacheKey depends on the declared effects as well as the content since
// they decide whether "name.op(...)" parses as an effect call.
func cacheKey(src []byte, effects []string) string {
	h := sha256.New()
	h.Write(src)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(effects, ",")))
	return hex.EncodeToString(h.Sum(nil))
}
