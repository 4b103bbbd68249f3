package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"github.com/lestrrat-go/strftime"
)

func (r *Registry) print(_ context.Context, args []lumen.Value) (lumen.Value, error) {
	words := make([]string, 0, len(args))
	for _, a := range args {
		words = append(words, lumen.Display(a))
	}
	_, err := fmt.Fprintln(r.opts.Stdout, strings.Join(words, " "))
	return lumen.Null{}, err
}

func (r *Registry) netGet(ctx context.Context, args []lumen.Value) (lumen.Value, error) {
	url := textArg(args, 0)
	if r.opts.Mock {
		return lumen.Text("(mock net.get " + url + ")"), nil
	}
	return r.fetch(ctx, url)
}

func (r *Registry) httpGet(ctx context.Context, args []lumen.Value) (lumen.Value, error) {
	url := textArg(args, 0)
	if r.opts.Mock {
		return lumen.Text("(mock http.get " + url + ")"), nil
	}
	return r.fetch(ctx, url)
}

// fetch reads url through the storage engine, refusing anything but
// HTTP so that network effects cannot read local files.
func (r *Registry) fetch(ctx context.Context, url string) (lumen.Value, error) {
	u, err := storage.ParseURI(url)
	if err != nil {
		return nil, err
	}
	if s := u.SchemeOf(); s != storage.HTTPScheme && s != storage.HTTPSScheme {
		return nil, fmt.Errorf("%s: not an http url", url)
	}
	b, err := storage.Get(ctx, r.opts.Engine, u, r.opts.MaxRead)
	if err != nil {
		return nil, err
	}
	return lumen.Text(b), nil
}

func (r *Registry) httpPost(ctx context.Context, args []lumen.Value) (lumen.Value, error) {
	url := textArg(args, 0)
	if r.opts.Mock {
		return lumen.Text("(mock http.post " + url + ")"), nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(textArg(args, 1)))
	if err != nil {
		return nil, err
	}
	resp, err := r.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("POST %s: %s", url, resp.Status)
	}
	body := io.Reader(resp.Body)
	if r.opts.MaxRead > 0 {
		body = io.LimitReader(body, r.opts.MaxRead)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return lumen.Text(b), nil
}

func (r *Registry) now(context.Context, []lumen.Value) (lumen.Value, error) {
	if r.opts.Mock {
		return lumen.Int(0), nil
	}
	return lumen.Int(time.Now().UnixMilli()), nil
}

func (r *Registry) sleep(ctx context.Context, args []lumen.Value) (lumen.Value, error) {
	ms, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	if r.opts.Mock || ms <= 0 {
		return lumen.Null{}, nil
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return lumen.Null{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// formatTime formats a time in milliseconds since the epoch, in UTC,
// with a strftime pattern.
func formatTime(_ context.Context, args []lumen.Value) (lumen.Value, error) {
	ms, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	f, err := strftime.New(textArg(args, 1))
	if err != nil {
		return nil, err
	}
	return lumen.Text(f.FormatString(time.UnixMilli(ms).UTC())), nil
}

// parseTime parses a date in any common layout and returns milliseconds
// since the epoch.  Layouts without a zone are read as UTC.
func parseTime(_ context.Context, args []lumen.Value) (lumen.Value, error) {
	t, err := dateparse.ParseIn(textArg(args, 0), time.UTC)
	if err != nil {
		return nil, err
	}
	return lumen.Int(t.UnixMilli()), nil
}

func (r *Registry) fsRead(ctx context.Context, args []lumen.Value) (lumen.Value, error) {
	u, err := storage.ParseURI(textArg(args, 0))
	if err != nil {
		return nil, err
	}
	b, err := storage.Get(ctx, r.opts.Engine, u, r.opts.MaxRead)
	if err != nil {
		return nil, err
	}
	return lumen.Text(b), nil
}

func (r *Registry) fsWrite(ctx context.Context, args []lumen.Value) (lumen.Value, error) {
	u, err := storage.ParseURI(textArg(args, 0))
	if err != nil {
		return nil, err
	}
	if err := storage.Put(ctx, r.opts.Engine, u, []byte(textArg(args, 1))); err != nil {
		return nil, err
	}
	return lumen.Null{}, nil
}

func (r *Registry) dbLoad(ctx context.Context, args []lumen.Value) (lumen.Value, error) {
	rows, err := r.load(ctx, textArg(args, 0))
	if err != nil {
		return nil, err
	}
	return rows, nil
}
