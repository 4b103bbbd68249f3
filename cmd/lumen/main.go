package main

import (
	"fmt"
	"os"

	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/check"
	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/edit"
	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/format"
	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/parse"
	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/repl"
	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/run"
	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/serve"
	_ "github.com/colin-oos/lumen-sub000/cmd/lumen/sid"
)

func main() {
	if err := root.Lumen.Exec(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
