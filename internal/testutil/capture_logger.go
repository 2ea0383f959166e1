package testutil

import (
	"fmt"
	"sync"
)

// CaptureLogger records keysAndValues-style log calls.  It satisfies
// the minimal Logger interfaces declared by the repository packages.
type CaptureLogger struct {
	mu      sync.Mutex
	entries []CapturedEntry
}

// CapturedEntry is one recorded log call.
type CapturedEntry struct {
	Level   string
	Message string
	KVs     []interface{}
}

// NewCaptureLogger creates an empty CaptureLogger.
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{}
}

func (c *CaptureLogger) record(level, msg string, kvs []interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, CapturedEntry{Level: level, Message: msg, KVs: kvs})
}

func (c *CaptureLogger) Debug(msg string, keysAndValues ...interface{}) {
	c.record("debug", msg, keysAndValues)
}

func (c *CaptureLogger) Info(msg string, keysAndValues ...interface{}) {
	c.record("info", msg, keysAndValues)
}

func (c *CaptureLogger) Warn(msg string, keysAndValues ...interface{}) {
	c.record("warn", msg, keysAndValues)
}

func (c *CaptureLogger) Error(msg string, keysAndValues ...interface{}) {
	c.record("error", msg, keysAndValues)
}

// Entries returns a copy of everything recorded so far.
func (c *CaptureLogger) Entries() []CapturedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CapturedEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Dump formats all entries, one per line, for test failure output.
func (c *CaptureLogger) Dump() string {
	var out string
	for _, e := range c.Entries() {
		out += fmt.Sprintf("[%s] %s %v\n", e.Level, e.Message, e.KVs)
	}
	return out
}
