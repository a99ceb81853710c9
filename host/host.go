// Package host drives plugins cycle by cycle.
//
// A Session owns a single plugin instance along with all the buffers it
// needs. Every cycle the session reads input audio from the pump, forges
// the control sequence from scheduled events and transport changes, runs
// the plugin and returns its output. Sessions can be processed
// synchronously with Process or asynchronously with Start, in which case
// the output is sent to a sink and the session can be mutated between
// cycles.
package host

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pipelined.dev/lv2"
)

type (
	// Pump is a source of audio input. Pump allocates the read function
	// and returns it along with the sample rate of the source. Read
	// function fills the buffer and returns the number of frames read.
	// io.EOF is returned when there is no more input.
	Pump interface {
		Pump(sessionID string, bufferSize int) (func([]float32) (int, error), float64, error)
	}

	// Sink is a destination of audio output.
	Sink interface {
		Sink(sessionID string, sampleRate float64, bufferSize int) (func([]float32) error, error)
	}

	// Flusher defines component that must flushed in the end of execution.
	Flusher interface {
		Flush(sessionID string) error
	}

	// Registry holds known plugin descriptors.
	Registry map[string]lv2.Descriptor
)

var (
	// ErrUnknownPlugin is returned when plugin is not registered.
	ErrUnknownPlugin = errors.New("unknown plugin")
	// ErrInvalidBufferSize is returned when session buffer size isn't positive.
	ErrInvalidBufferSize = errors.New("buffer size must be positive")
	// ErrSampleRateMismatch is returned when pump sample rate differs
	// from the session sample rate.
	ErrSampleRateMismatch = errors.New("sample rate mismatch")
)

// ErrorRun is returned if run was successfully started, but execution
// and/or flush failed.
type ErrorRun struct {
	ErrExec  error
	ErrFlush error
}

func (e *ErrorRun) Error() string {
	switch {
	case e.ErrExec != nil && e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v after execute error: %v", e.ErrFlush, e.ErrExec)
	case e.ErrExec != nil:
		return fmt.Sprintf("execute error: %v", e.ErrExec)
	case e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v", e.ErrFlush)
	}
	return ""
}

// Is checks if any of errors match provided sentinel error.
func (e *ErrorRun) Is(err error) bool {
	if e.ErrExec != nil && errors.Is(e.ErrExec, err) {
		return true
	}
	if e.ErrFlush != nil && errors.Is(e.ErrFlush, err) {
		return true
	}
	return false
}

// newErrorRun returns untyped nil if both errors are nil.
func newErrorRun(errExec, errFlush error) error {
	if errExec == nil && errFlush == nil {
		return nil
	}
	return &ErrorRun{
		ErrExec:  errExec,
		ErrFlush: errFlush,
	}
}

// NewRegistry creates registry of provided descriptors.
func NewRegistry(descriptors ...lv2.Descriptor) Registry {
	r := make(Registry, len(descriptors))
	for _, d := range descriptors {
		r[d.URI] = d
	}
	return r
}

// Lookup returns descriptor by its URI or case-insensitive name.
func (r Registry) Lookup(name string) (lv2.Descriptor, error) {
	if d, ok := r[name]; ok {
		return d, nil
	}
	for _, d := range r {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return lv2.Descriptor{}, fmt.Errorf("%q: %w", name, ErrUnknownPlugin)
}

// URIs returns sorted URIs of registered plugins.
func (r Registry) URIs() []string {
	uris := make([]string, 0, len(r))
	for uri := range r {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
