// Package outputflags holds the flags that choose where and how a command
// writes its results.
package outputflags

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	lumen "github.com/colin-oos/lumen-sub000"
	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"golang.org/x/term"
)

type Flags struct {
	JSON       bool
	color      bool
	colorOut   bool
	outputFile string
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.outputFile, "o", "", "write output to this file or URI instead of stdout")
	fs.BoolVar(&f.JSON, "j", false, "write results as JSON")
	fs.BoolVar(&f.color, "color", true, "highlight signals when writing to a terminal")
}

func (f *Flags) Init() error {
	if f.outputFile == "-" {
		f.outputFile = ""
	}
	return nil
}

func (f *Flags) FileName() string {
	return f.outputFile
}

// Open returns the output destination.  Closing the writer for standard
// output leaves standard output open.
func (f *Flags) Open(ctx context.Context, engine storage.Engine) (io.WriteCloser, error) {
	if f.outputFile == "" {
		f.colorOut = f.color && !f.JSON && term.IsTerminal(int(os.Stdout.Fd()))
		return nopCloser{os.Stdout}, nil
	}
	u, err := storage.ParseURI(f.outputFile)
	if err != nil {
		return nil, fmt.Errorf("-o option: %w", err)
	}
	return engine.Put(ctx, u)
}

// Value renders v the way lumen run shows a result.  Signals are drawn in
// red on a terminal.
func (f *Flags) Value(v lumen.Value) string {
	s := lumen.Display(v)
	if f.colorOut && lumen.IsSignal(v) {
		return "\x1b[31m" + s + "\x1b[0m"
	}
	return s
}

// WriteJSON writes v as one line of JSON.
func WriteJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
