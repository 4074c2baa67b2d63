// Package notify carries user-visible, non-blocking notifications raised by
// mutation bindings.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Notifier receives transient user-facing messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Success(msg string) {
	log.Info().Str("notification", "success").Msg(msg)
}

func (n *LogNotifier) Error(msg string) {
	log.Error().Str("notification", "error").Msg(msg)
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	r.successes = append(r.successes, msg)
	r.mu.Unlock()
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	r.errors = append(r.errors, msg)
	r.mu.Unlock()
}

// Successes returns a copy of recorded success messages.
func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

// Errors returns a copy of recorded error messages.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}
