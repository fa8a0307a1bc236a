package auditlog

import (
	"bufio"
	"os"

	"feebump/internal/services"
)

// Log appends entries to a file.
type Log struct {
	path string
}

// New returns a Log writing to path.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

func (l *Log) open() (*os.File, error) {
	return os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Probe opens the file for append, creating it if needed, and closes it
// without writing. Callers use it to fail before running relay commands when
// the log is not writable.
func (l *Log) Probe() error {
	file, err := l.open()
	if err != nil {
		return services.NewStorageError("probe", l.path, err)
	}
	if err := file.Close(); err != nil {
		return services.NewStorageError("probe", l.path, err)
	}
	return nil
}

// Append writes every entry in order, one line each.
func (l *Log) Append(entries []Entry) error {
	file, err := l.open()
	if err != nil {
		return services.NewStorageError("append", l.path, err)
	}
	w := bufio.NewWriter(file)
	for _, entry := range entries {
		if _, err := w.WriteString(entry.Line() + "\n"); err != nil {
			file.Close()
			return services.NewStorageError("append", l.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return services.NewStorageError("append", l.path, err)
	}
	if err := file.Close(); err != nil {
		return services.NewStorageError("append", l.path, err)
	}
	return nil
}
