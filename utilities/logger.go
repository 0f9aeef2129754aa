package utilities

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const logFlags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile

var (
	InfoLogger  = log.New(os.Stdout, "\033[32m[INFO]\033[0m ", logFlags)
	WarnLogger  = log.New(os.Stdout, "\033[33m[WARN]\033[0m ", logFlags)
	ErrorLogger = log.New(os.Stderr, "\033[31m[ERROR]\033[0m ", logFlags)
	DebugLogger = log.New(os.Stdout, "\033[36m[DEBUG]\033[0m ", logFlags)

	debugEnabled bool
)

// LogOptions controls InitLogger.
type LogOptions struct {
	Level string // debug, info, warn, error
	File  string // optional rotating log file

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// InitLogger sets up the level loggers.
// With a File set, every level is also written to a lumberjack-rotated file.
func InitLogger(opts LogOptions) {
	log.SetFlags(logFlags)

	var file io.Writer
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		}
	}
	out := func(w io.Writer) io.Writer {
		if file == nil {
			return w
		}
		return io.MultiWriter(w, file)
	}

	level := strings.ToLower(strings.TrimSpace(opts.Level))
	debugEnabled = level == "debug"

	InfoLogger = log.New(out(os.Stdout), "\033[32m[INFO]\033[0m ", logFlags)
	WarnLogger = log.New(out(os.Stdout), "\033[33m[WARN]\033[0m ", logFlags)
	ErrorLogger = log.New(out(os.Stderr), "\033[31m[ERROR]\033[0m ", logFlags)
	DebugLogger = log.New(out(os.Stdout), "\033[36m[DEBUG]\033[0m ", logFlags)

	switch level {
	case "warn":
		InfoLogger.SetOutput(io.Discard)
	case "error":
		InfoLogger.SetOutput(io.Discard)
		WarnLogger.SetOutput(io.Discard)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// LogRequest logs one served HTTP request
func LogRequest(method, path, remoteAddr, requestID string, status int, duration time.Duration) {
	InfoLogger.Printf("%s %s %s %d %v request_id=%s", method, path, remoteAddr, status, duration, requestID)
}

// LogError logs err together with where it happened
func LogError(err error, context string) {
	ErrorLogger.Printf("%s: %v", context, err)
}

func LogWarn(format string, v ...interface{}) {
	WarnLogger.Printf(format, v...)
}

// LogDebug is a no-op unless the level is "debug".
func LogDebug(format string, v ...interface{}) {
	if !debugEnabled {
		return
	}
	DebugLogger.Printf(format, v...)
}

// LogInfo logs general information
func LogInfo(format string, v ...interface{}) {
	InfoLogger.Printf(format, v...)
}
