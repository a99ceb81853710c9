// Package midigate passes audio through only while MIDI notes are held.
//
// Program 0 opens the gate while at least one note is on, program 1
// inverts it: audio passes while no notes are on.
package midigate

import (
	"pipelined.dev/lv2"
	"pipelined.dev/lv2/atom"
	"pipelined.dev/lv2/segment"
	"pipelined.dev/lv2/urid"
)

// URI of the plugin.
const URI = "urn:pipelined:lv2:midigate"

// Descriptor of the plugin.
var Descriptor = lv2.Descriptor{
	URI:         URI,
	Name:        "MIDI Gate",
	Instantiate: Instantiate,
}

// Gate is the gate instance.
type Gate struct {
	ids         *atom.URIDs
	activeNotes int
	program     uint8

	in  []float32
	out []float32
}

// Instantiate creates a gate instance.
func Instantiate(info lv2.Info, m urid.Mapper) (lv2.Plugin, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &Gate{
		ids: atom.NewURIDs(m),
	}, nil
}

// Activate closes the gate and resets the program.
func (g *Gate) Activate() {
	g.activeNotes = 0
	g.program = 0
}

// Run processes the cycle.
func (g *Gate) Run(p *lv2.Ports) {
	g.in, g.out = p.Input, p.Output
	segment.Walk(len(p.Output), atom.ReadSequence(p.Control, g.ids).Iter(), g)
	g.in, g.out = nil, nil
}

// ActiveNotes returns the number of held notes.
func (g *Gate) ActiveNotes() int {
	return g.activeNotes
}

// Program returns the gate mode.
func (g *Gate) Program() uint8 {
	return g.program
}

// Open returns true if audio passes through.
func (g *Gate) Open() bool {
	if g.program == 0 {
		return g.activeNotes > 0
	}
	return g.activeNotes == 0
}

// WriteSegment copies or silences frames [begin, end). Frames missing in
// the input are silenced.
func (g *Gate) WriteSegment(begin, end int) {
	if end > len(g.out) {
		end = len(g.out)
	}
	if begin >= end {
		return
	}
	if !g.Open() {
		lv2.Silence(g.out, begin, end)
		return
	}
	copied := 0
	if begin < len(g.in) {
		copied = copy(g.out[begin:end], g.in[begin:])
	}
	lv2.Silence(g.out, begin+copied, end)
}

// Apply counts notes and switches programs.
func (g *Gate) Apply(e atom.Event) {
	switch e.Kind {
	case atom.NoteOn:
		g.activeNotes++
	case atom.NoteOff:
		// unmatched note offs don't make the counter negative
		if g.activeNotes > 0 {
			g.activeNotes--
		}
	case atom.ProgramChange:
		if e.Program == 0 || e.Program == 1 {
			g.program = e.Program
		}
	}
}
