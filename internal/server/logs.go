// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package server

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Levels assigned to captured server output.
const (
	levelInfo  = "info"
	levelWarn  = "warning"
	levelError = "error"
)

// maxLogEntries caps the in-memory log buffer. The server is chatty and the
// supervisor can run for days, so the oldest entries are dropped past this.
const maxLogEntries = 5000

// Entry is a single captured line of server output.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// Logs is a bounded in-memory record of server output, oldest first. The
// zero value is ready to use. Safe for concurrent use.
type Logs struct {
	mu      sync.Mutex
	entries []Entry
}

// Append records a line of server output.
func (l *Logs) Append(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Time: time.Now(), Level: level, Message: message})
	if n := len(l.entries); n > maxLogEntries {
		l.entries = slices.Delete(l.entries, 0, n-maxLogEntries)
	}
}

// Entries returns a copy of the recorded entries.
func (l *Logs) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Clear drops all recorded entries.
func (l *Logs) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// sniffLevel guesses the level of a server output line from its contents.
// The server logs in no particular format, so this errs on the side of
// flagging too much as errors rather than too little.
func sniffLevel(line string) string {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error"):
		return levelError
	case strings.Contains(lower, "warn"):
		return levelWarn
	}
	return levelInfo
}
