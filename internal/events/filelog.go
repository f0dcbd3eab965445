package events

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileLog is the append-only per-session log file. One line is written per
// question announcement, per resolution and at quiz end. Starting a new
// quiz truncates the file and rewrites the header.
type FileLog struct {
	mu   sync.Mutex
	path string
}

// NewFileLog creates a file log writing to path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Reset truncates the log and writes the header line.
func (l *FileLog) Reset(header string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.WriteFile(l.path, []byte(header+"\n"), 0o644); err != nil {
		log.Error().Err(err).Str("path", l.path).Msg("failed to reset session log")
	}
}

// Append writes one line to the end of the log.
func (l *FileLog) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Error().Err(err).Str("path", l.path).Msg("failed to open session log")
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, line); err != nil {
		log.Error().Err(err).Str("path", l.path).Msg("failed to append session log line")
	}
}
