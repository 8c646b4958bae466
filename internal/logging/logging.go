// Package logging configures the global zerolog logger of the command line
// tool.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level maps the -v count to a log level.
func Level(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// StateLogFile as the logFile of SetupLogger selects DefaultLogFile.
const StateLogFile = "state"

// SetupLogger configures the global logger based on verbosity level. Console
// output goes to out; when logFile is set, records are also appended there.
// The returned closer releases the log file.
func SetupLogger(out io.Writer, verbosity int, logFile string) (io.Closer, error) {
	if logFile == StateLogFile {
		path, err := DefaultLogFile()
		if err != nil {
			return nil, fmt.Errorf("failed to locate log file: %w", err)
		}
		logFile = path
	}
	zerolog.SetGlobalLevel(Level(verbosity))

	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(out),
	}
	writers := []io.Writer{console}

	var closer io.Closer = nopCloser{}
	if logFile != "" {
		f, err := openLogFile(logFile)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
		closer = f
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
	return closer, nil
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// DefaultLogFile returns the log file under the XDG state directory,
// creating its parent directories.
func DefaultLogFile() (string, error) {
	return xdg.StateFile(filepath.Join("tabtext", "tabtext.log"))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
