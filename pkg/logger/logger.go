package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	log     *slog.Logger
	logFile *os.File
)

// Options controls where and how log lines are written.
type Options struct {
	File   string // optional, appended to in addition to stdout
	Level  string // debug, info, warn, error
	Format string // text or json
}

// InitLogger initializes the logger with console output and, when
// opts.File is set, a log file.
func InitLogger(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stdout
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		w = io.MultiWriter(os.Stdout, logFile)
	}

	log = newLogger(w, opts)
	return nil
}

// SetOutput redirects the logger to w. Used by tests.
func SetOutput(w io.Writer, opts Options) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(w, opts)
}

func newLogger(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, hopts)
	} else {
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h).With(slog.String("service", "csvbatch"))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = newLogger(os.Stdout, Options{})
	}
	return log
}

func Debugf(format string, v ...interface{}) {
	get().Debug(fmt.Sprintf(format, v...))
}

func Info(format string, v ...interface{}) {
	get().Info(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	Info(format, v...)
}

func Error(format string, v ...interface{}) {
	get().Error(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	Error(format, v...)
}

func Warn(format string, v ...interface{}) {
	get().Warn(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	Warn(format, v...)
}
