package fileio

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	ErrorLogName = "errors.log"
	// ErrorLogUnwritable is returned in place of a path when no log file could be written.
	ErrorLogUnwritable = "Unable to write log file"
)

// ErrorLog appends failures to errors.log in Dir, falling back to FallbackDir.
type ErrorLog struct {
	Dir         string
	FallbackDir string

	mu sync.Mutex
}

// NewErrorLog logs into dir, falling back to the directory holding the executable.
func NewErrorLog(dir string) *ErrorLog {
	fallback := "."
	if exe, err := os.Executable(); err == nil {
		fallback = filepath.Dir(exe)
	}
	return &ErrorLog{Dir: dir, FallbackDir: fallback}
}

// Record appends one entry and returns the file written to. It never fails.
func (l *ErrorLog) Record(context string, err error) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, dir := range []string{l.Dir, l.FallbackDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, ErrorLogName)
		if appendEntry(path, context, err) == nil {
			return path
		}
	}
	return ErrorLogUnwritable
}

func appendEntry(path, context string, cause error) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFunction:    func(t time.Time) time.Time { return t.UTC() },
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})
	if cause == nil {
		logger.Error(context)
	} else {
		logger.Error(context, "error", cause.Error())
	}
	return f.Close()
}
