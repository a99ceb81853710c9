package lv2

import (
	"errors"
	"math"

	"pipelined.dev/lv2/urid"
)

var (
	// ErrInvalidSampleRate is returned if plugin is instantiated with
	// non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	// ErrInvalidTempo is returned if plugin is instantiated with
	// non-positive tempo.
	ErrInvalidTempo = errors.New("invalid tempo")
)

type (
	// Plugin is an instantiated plugin. Activate and Run are never called
	// concurrently for the same instance.
	Plugin interface {
		// Activate resets the instance state. It's called before the
		// first cycle and every time the host restarts processing.
		Activate()
		// Run processes a single cycle. It must not block or allocate.
		Run(*Ports)
	}

	// InstantiateFunc creates a new plugin instance. All buffers the
	// instance needs must be allocated here.
	InstantiateFunc func(Info, urid.Mapper) (Plugin, error)

	// Descriptor binds plugin URI with its constructor.
	Descriptor struct {
		URI         string
		Name        string
		Instantiate InstantiateFunc
	}

	// Info contains properties of the host session.
	Info struct {
		SampleRate float64
		BundlePath string
	}

	// Ports are the buffers connected to the instance for a single
	// cycle. Plugins only use the ports they declare; length of Output
	// is the cycle size.
	Ports struct {
		// Control is the input event sequence.
		Control []byte
		// Notify is the output event buffer, its length is the capacity.
		Notify []byte
		Input  []float32
		Output []float32
		// Gain is a control port value in dB.
		Gain float32
	}
)

// Validate checks session properties.
func (i Info) Validate() error {
	if !(i.SampleRate > 0) || math.IsInf(i.SampleRate, 0) {
		return ErrInvalidSampleRate
	}
	return nil
}

// Frames returns cycle size.
func (p *Ports) Frames() int {
	return len(p.Output)
}

// Silence fills output frames [begin, end) with zeros.
func Silence(out []float32, begin, end int) {
	if end > len(out) {
		end = len(out)
	}
	for i := begin; i < end; i++ {
		out[i] = 0
	}
}
