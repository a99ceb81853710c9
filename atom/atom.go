/*
Package atom reads and writes event sequences exchanged with plugins.

The layout follows LV2 atoms in little endian byte order. Every atom starts
with a header of two uint32 values: body size and body type. Bodies are
padded to 8 bytes. A sequence body starts with a time unit and a pad word,
followed by events:

	frames  int64
	size    uint32
	type    uint32
	body    [size]byte, padded to 8

Reading never fails: absent or malformed input yields an empty sequence and
bodies that can't be classified are reported as Unrecognized. Reading and
writing don't allocate, so both can be used inside a processing cycle.
*/
package atom

import (
	"encoding/binary"

	"pipelined.dev/lv2/urid"
)

const (
	headerSize      = 8
	sequenceHeader  = headerSize + 8
	eventHeaderSize = 8 + headerSize
	objectHeader    = 8
	propertyHeader  = 8 + headerSize
)

var le = binary.LittleEndian

// URIDs holds identifiers of all types and keys that are known to the
// package. It must be created once per instance with NewURIDs.
type URIDs struct {
	Sequence urid.URID
	Object   urid.URID
	Blank    urid.URID
	Chunk    urid.URID
	Float    urid.URID
	Double   urid.URID
	Int      urid.URID
	Long     urid.URID

	MidiEvent urid.URID

	Position       urid.URID
	BarBeat        urid.URID
	BeatsPerMinute urid.URID
	Speed          urid.URID

	Frame urid.URID
	Beat  urid.URID
}

// NewURIDs maps all URIs required to decode and encode sequences.
func NewURIDs(m urid.Mapper) *URIDs {
	return &URIDs{
		Sequence:       m.Map(urid.AtomSequence),
		Object:         m.Map(urid.AtomObject),
		Blank:          m.Map(urid.AtomBlank),
		Chunk:          m.Map(urid.AtomChunk),
		Float:          m.Map(urid.AtomFloat),
		Double:         m.Map(urid.AtomDouble),
		Int:            m.Map(urid.AtomInt),
		Long:           m.Map(urid.AtomLong),
		MidiEvent:      m.Map(urid.MidiEvent),
		Position:       m.Map(urid.TimePosition),
		BarBeat:        m.Map(urid.TimeBarBeat),
		BeatsPerMinute: m.Map(urid.TimeBeatsPerMinute),
		Speed:          m.Map(urid.TimeSpeed),
		Frame:          m.Map(urid.UnitsFrame),
		Beat:           m.Map(urid.UnitsBeat),
	}
}

// pad returns size rounded up to 8 bytes.
func pad(size uint32) uint64 {
	return (uint64(size) + 7) &^ 7
}

func readHeader(b []byte) (size uint32, typ urid.URID) {
	return le.Uint32(b[0:4]), urid.URID(le.Uint32(b[4:8]))
}

func putHeader(b []byte, size uint32, typ urid.URID) {
	le.PutUint32(b[0:4], size)
	le.PutUint32(b[4:8], uint32(typ))
}
