// Package mclog adapts the logging setup used throughout the library
// (zerolog, with a console sink and an optional rotating file sink) for
// use as an importable library rather than a hardwired executable-relative
// path. Callers that never call Init get zerolog's default logger.
package mclog

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Init. The zero value logs to stderr at Info level
// with no file sink.
type Options struct {
	// Verbose enables Debug-level logging (per-step detail).
	Verbose bool
	// LogDir, if non-empty, enables a rotating file sink under this
	// directory in addition to the console sink.
	LogDir string
	// LogFileName names the rotating log file within LogDir. Defaults to
	// "mcsim.log".
	LogFileName string
}

// Init installs a global zerolog logger combining a terminal-aware console
// writer with an optional lumberjack rotating file writer, mirroring the
// dual-sink setup of an interactive CLI tool adapted for library use.
func Init(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339Nano,
		NoColor:    !isTerminal,
	}

	var writers []io.Writer
	writers = append(writers, consoleWriter)

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
			return err
		}
		fileName := opts.LogFileName
		if fileName == "" {
			fileName = "mcsim.log"
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.LogDir, fileName),
			MaxSize:    16, // megabytes
			MaxBackups: 32,
			MaxAge:     365, // days
			Compress:   true,
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()

	log.Debug().Bool("verbose", opts.Verbose).Str("log_dir", opts.LogDir).Msg("logging initialized")
	return nil
}
