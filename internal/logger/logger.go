// Package logger prints verbosity-gated progress messages to stderr.
// Standard output is reserved for the JSON envelope, so nothing here ever
// writes to it.
//
// Levels:
//
//	0 - nothing but the OAuth prompt
//	1 - which credentials and token were used, API calls made
//	2 - request details
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	LevelQuiet = iota
	LevelInfo
	LevelDebug
)

var (
	mu     sync.RWMutex
	level  int
	output io.Writer = os.Stderr
)

// SetLevel sets the verbosity level.
func SetLevel(l int) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// Level returns the current verbosity level.
func Level() int {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetOutput sets the writer messages go to. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Printf prints the message if verbosity is at or above the given level.
func Printf(verbosity int, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbosity <= level {
		fmt.Fprintf(output, format+"\n", args...)
	}
}

// Info prints at LevelInfo.
func Info(format string, args ...any) {
	Printf(LevelInfo, "  "+format, args...)
}

// Debug prints at LevelDebug.
func Debug(format string, args ...any) {
	Printf(LevelDebug, "    "+format, args...)
}

// Prompt always prints. Used for messages the user must act on.
func Prompt(format string, args ...any) {
	Printf(LevelQuiet, format, args...)
}
