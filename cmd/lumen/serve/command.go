package serve

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alecthomas/units"
	"github.com/colin-oos/lumen-sub000/cmd/lumen/root"
	"github.com/colin-oos/lumen-sub000/pkg/charm"
	"github.com/colin-oos/lumen-sub000/service"
	"go.uber.org/zap"
)

var spec = &charm.Spec{
	Name:  "serve",
	Usage: "serve [ options ]",
	Short: "serve Lumen over HTTP",
	Long: `
The serve command listens for HTTP requests and answers them until it is
interrupted.  The endpoints are

  POST /run     run a program and return its value, output, and trace hash
  POST /fmt     return the canonical text of a program
  POST /sid     return the Sid of a program
  POST /check   return the static checker's diagnostics
  GET  /status  return "ok"
  GET  /metrics return Prometheus metrics

A request body is either a JSON object such as {"source": "1 + 2",
"deny": ["net"]} or, with content type application/x-lumen or text/plain,
the program text itself with "deny", "mock", and "seed" given as query
parameters.

Programs run by the service may read HTTP, HTTPS, and S3 URLs but never
the local file system.  Each request is limited to -maxsteps actor
messages.
`,
	New: New,
}

func init() {
	root.Lumen.Add(spec)
}

type Command struct {
	*root.Command
	listenAddr  string
	corsOrigins []string
	maxSteps    int
	maxSource   int64
	maxRead     int64
	shutdown    time.Duration
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.StringVar(&c.listenAddr, "l", "localhost:9867", "[addr]:port to listen on")
	f.Func("cors.origin", "comma-separated origins allowed by CORS (default all)", func(s string) error {
		c.corsOrigins = append(c.corsOrigins, strings.Split(s, ",")...)
		return nil
	})
	f.IntVar(&c.maxSteps, "maxsteps", service.DefaultMaxSteps, "maximum number of actor messages processed per request")
	c.maxSource = service.DefaultMaxSource
	f.Func("maxsource", "maximum size of a request body (default 1MB)", func(s string) error {
		n, err := units.ParseStrictBytes(s)
		c.maxSource = n
		return err
	})
	f.Func("fs.maxread", "maximum size of a URL read by a program (e.g., 8MB)", func(s string) error {
		n, err := units.ParseStrictBytes(s)
		c.maxRead = n
		return err
	})
	f.DurationVar(&c.shutdown, "shutdown", 5*time.Second, "time allowed for requests to finish on shutdown")
	return c, nil
}

func (c *Command) Run(args []string) error {
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	if len(args) > 0 {
		return errors.New("serve takes no arguments")
	}
	svc := service.New(service.Config{
		Logger:      c.Logger,
		CORSOrigins: c.corsOrigins,
		MaxSource:   c.maxSource,
		MaxSteps:    c.maxSteps,
		MaxRead:     c.maxRead,
	})
	ln, err := net.Listen("tcp", c.listenAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           svc,
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.Logger.Info("listening", zap.String("addr", ln.Addr().String()))
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
