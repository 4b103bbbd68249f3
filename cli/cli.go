// Package cli holds the flags and setup shared by every lumen command.
package cli

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Initializer is implemented by flag groups that need to validate or
// load something after the command line is parsed.
type Initializer interface {
	Init() error
}

type Flags struct {
	logLevel zapcore.Level
	logPath  string
	devMode  bool
	// Logger is set by Init.
	Logger *zap.Logger
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.logLevel = zapcore.WarnLevel
	fs.Var(&f.logLevel, "log.level", "logging level (debug, info, warn, error)")
	fs.StringVar(&f.logPath, "log.path", "", "write logs to this file, rotated by size, instead of stderr")
	fs.BoolVar(&f.devMode, "log.devmode", false, "development mode logging (human-readable, stack traces on warnings)")
}

// Init builds the logger, runs each initializer, and returns a context
// canceled on interrupt along with a cleanup function that must be
// called when the command finishes.
func (f *Flags) Init(all ...Initializer) (context.Context, func(), error) {
	for _, i := range all {
		if err := i.Init(); err != nil {
			return nil, nil, err
		}
	}
	logger := f.newLogger()
	f.Logger = logger
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cleanup := func() {
		cancel()
		logger.Sync()
	}
	return ctx, cleanup, nil
}

func (f *Flags) newLogger() *zap.Logger {
	var enc zapcore.Encoder
	if f.devMode {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	ws := zapcore.Lock(os.Stderr)
	if f.logPath != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   f.logPath,
			MaxSize:    100,
			MaxBackups: 5,
		})
	}
	core := zapcore.NewCore(enc, ws, zap.NewAtomicLevelAt(f.logLevel))
	opts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if f.devMode {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}
	return zap.New(core, opts...)
}
