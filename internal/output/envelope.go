// Package output writes the single JSON envelope every command prints.
package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// Envelope is the one object a command prints to stdout.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success writes {"success": true, "data": data}.
func Success(w io.Writer, data any) error {
	return write(w, Envelope{Success: true, Data: data})
}

// Failure writes {"success": false, "error": err.Error()}.
func Failure(w io.Writer, err error) error {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return write(w, Envelope{Success: false, Error: msg})
}

// ExitCode maps a command result to the process exit status.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func write(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
