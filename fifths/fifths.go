// Package fifths adds a transposed copy of every note to the event stream.
//
// All input events are forwarded unchanged. Note on and note off events are
// followed by the same event shifted by the interval, a fifth by default.
// Notes that would leave the MIDI range are not transposed. If the output
// buffer is full, the rest of the cycle is dropped.
package fifths

import (
	"pipelined.dev/lv2"
	"pipelined.dev/lv2/atom"
	"pipelined.dev/lv2/urid"
)

// URI of the plugin.
const URI = "urn:pipelined:lv2:fifths"

// DefaultInterval is a perfect fifth in semitones.
const DefaultInterval = 7

// Descriptor of the plugin with default interval.
var Descriptor = lv2.Descriptor{
	URI:         URI,
	Name:        "Fifths",
	Instantiate: Instantiate(),
}

type (
	// Option configures the transposer.
	Option func(*Fifths)

	// Fifths is the transposer instance.
	Fifths struct {
		ids      *atom.URIDs
		interval int
		out      atom.SequenceWriter
		dropped  int
	}
)

// WithInterval sets the interval in semitones. It can be negative.
func WithInterval(semitones int) Option {
	return func(f *Fifths) {
		f.interval = semitones
	}
}

// Instantiate returns constructor of transposer instances.
func Instantiate(options ...Option) lv2.InstantiateFunc {
	return func(info lv2.Info, m urid.Mapper) (lv2.Plugin, error) {
		if err := info.Validate(); err != nil {
			return nil, err
		}
		f := Fifths{
			ids:      atom.NewURIDs(m),
			interval: DefaultInterval,
		}
		for _, option := range options {
			option(&f)
		}
		return &f, nil
	}
}

// Activate does nothing, the transposer is stateless between cycles.
func (f *Fifths) Activate() {}

// Run transposes the cycle's events into the notify port.
func (f *Fifths) Run(p *lv2.Ports) {
	f.dropped = 0
	if err := f.out.Init(p.Notify, f.ids); err != nil {
		f.dropped = atom.ReadSequence(p.Control, f.ids).Len()
		return
	}

	it := atom.ReadSequence(p.Control, f.ids).Iter()
	for it.Next() {
		e := it.Event()
		if f.out.Forward(e) != nil {
			f.drop(it)
			return
		}
		if e.Kind != atom.NoteOn && e.Kind != atom.NoteOff {
			continue
		}
		pitch, ok := Transpose(e.Pitch, f.interval)
		if !ok {
			continue
		}
		transposed := e.Payload
		transposed.Pitch = pitch
		if f.out.WriteNote(e.Frames, transposed) != nil {
			f.drop(it)
			return
		}
	}
}

// Dropped returns the number of input events of the last cycle whose
// output is missing or incomplete because the notify buffer was full.
func (f *Fifths) Dropped() int {
	return f.dropped
}

func (f *Fifths) drop(it atom.Iterator) {
	f.dropped = 1
	for it.Next() {
		f.dropped++
	}
}

// Transpose shifts pitch by interval. False is returned if result is out of
// MIDI note range.
func Transpose(pitch uint8, interval int) (uint8, bool) {
	p := int(pitch) + interval
	if p < 0 || p > atom.MaxPitch {
		return 0, false
	}
	return uint8(p), true
}
