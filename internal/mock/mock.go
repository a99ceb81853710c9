// Package mock provides mocks for host components and allows to execute integration tests.
package mock

import (
	"io"
	"time"

	"pipelined.dev/lv2"
	"pipelined.dev/lv2/atom"
	"pipelined.dev/lv2/urid"
)

// URI of the mock plugin.
const URI = "urn:pipelined:lv2:mock"

type (
	// Plugin mocks an lv2.Plugin. It copies input to output and records
	// decoded control events.
	Plugin struct {
		counter
		Info        lv2.Info
		Activations int
		Received    []Received
		ErrorOnInit error
		ids         *atom.URIDs
	}

	// Received is the control event delivered to the mock plugin.
	Received struct {
		Cycle  int
		Frames int64
		atom.Payload
	}
)

// Descriptor returns descriptor that instantiates the mock.
func (m *Plugin) Descriptor() lv2.Descriptor {
	return lv2.Descriptor{
		URI:  URI,
		Name: "Mock",
		Instantiate: func(info lv2.Info, mapper urid.Mapper) (lv2.Plugin, error) {
			if m.ErrorOnInit != nil {
				return nil, m.ErrorOnInit
			}
			if err := info.Validate(); err != nil {
				return nil, err
			}
			m.Info = info
			m.ids = atom.NewURIDs(mapper)
			return m, nil
		},
	}
}

// Activate implements lv2.Plugin.
func (m *Plugin) Activate() {
	m.Activations++
	m.Received = nil
	m.reset()
}

// Run implements lv2.Plugin.
func (m *Plugin) Run(p *lv2.Ports) {
	for it := atom.ReadSequence(p.Control, m.ids).Iter(); it.Next(); {
		e := it.Event()
		m.Received = append(m.Received, Received{
			Cycle:   m.Cycles,
			Frames:  e.Frames,
			Payload: e.Payload,
		})
	}
	n := copy(p.Output, p.Input)
	lv2.Silence(p.Output, n, len(p.Output))
	m.advance(p.Frames())
}

// Pump mocks a host pump.
type Pump struct {
	counter
	Interval    time.Duration
	Limit       int
	Value       float32
	SampleRate  float64
	ErrorOnCall error
	Hooks
}

// Pump returns new pump function.
func (m *Pump) Pump(runID string, bufferSize int) (func([]float32) (int, error), float64, error) {
	if m.ErrorOnAlloc != nil {
		return nil, 0, m.ErrorOnAlloc
	}
	return func(b []float32) (int, error) {
		if m.ErrorOnCall != nil {
			return 0, m.ErrorOnCall
		}
		if m.Frames >= m.Limit {
			return 0, io.EOF
		}
		time.Sleep(m.Interval)

		n := len(b)
		// check if we need a shorter.
		if left := m.Limit - m.Frames; left < n {
			n = left
		}
		for i := range b[:n] {
			b[i] = m.Value
		}
		m.advance(n)
		return n, nil
	}, m.SampleRate, nil
}

// Flush implements host.Flusher.
func (m *Pump) Flush(string) error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Sink mocks up a host sink.
// Buffer is not thread-safe, so should not be checked while session is running.
type Sink struct {
	counter
	buffer      []float32
	Discard     bool
	ErrorOnCall error
	Hooks
}

// Sink returns new sink function.
func (m *Sink) Sink(runID string, sampleRate float64, bufferSize int) (func([]float32) error, error) {
	if m.ErrorOnAlloc != nil {
		return nil, m.ErrorOnAlloc
	}
	return func(b []float32) error {
		if m.ErrorOnCall != nil {
			return m.ErrorOnCall
		}
		if !m.Discard {
			m.buffer = append(m.buffer, b...)
		}
		m.advance(len(b))
		return nil
	}, nil
}

// Flush implements host.Flusher.
func (m *Sink) Flush(string) error {
	m.Flushed = true
	return m.ErrorOnFlush
}

// Buffer returns sink's buffer
func (m *Sink) Buffer() []float32 {
	return m.buffer
}

// Hooks allows to mock components hooks.
type Hooks struct {
	Flushed bool

	ErrorOnAlloc error
	ErrorOnFlush error
}

// counter counts cycles and frames.
type counter struct {
	Cycles int
	Frames int
}

// reset counter's metrics.
func (c *counter) reset() {
	c.Cycles, c.Frames = 0, 0
}

// advance counter's metrics.
func (c *counter) advance(size int) {
	c.Cycles++
	c.Frames = c.Frames + size
}
