package atom

import (
	"errors"
	"math"

	"gitlab.com/gomidi/midi/v2"

	"pipelined.dev/lv2/urid"
)

// ErrFull is returned when an event doesn't fit into the writer's buffer.
var ErrFull = errors.New("atom: sequence buffer is full")

// SequenceWriter appends events to a fixed-capacity buffer. The sequence
// header is updated after every event, so the buffer always contains a
// valid sequence, even if the writer runs out of space.
type SequenceWriter struct {
	ids *URIDs
	buf []byte
	n   int
}

// Init starts a new sequence with frame time stamps in buf. ErrFull is
// returned if buf can't fit even an empty sequence.
func (w *SequenceWriter) Init(buf []byte, ids *URIDs) error {
	w.ids = ids
	w.buf = buf
	w.n = 0
	if len(buf) < sequenceHeader {
		w.buf = nil
		return ErrFull
	}
	putHeader(buf, sequenceHeader-headerSize, ids.Sequence)
	le.PutUint32(buf[8:12], uint32(ids.Frame))
	le.PutUint32(buf[12:16], 0)
	w.n = sequenceHeader
	return nil
}

// Write appends the event with provided type and body.
func (w *SequenceWriter) Write(frames int64, typ urid.URID, body []byte) error {
	size := uint32(len(body))
	if err := w.reserve(eventHeaderSize + pad(size)); err != nil {
		return err
	}
	b := w.buf[w.n:]
	le.PutUint64(b[0:8], uint64(frames))
	putHeader(b[8:16], size, typ)
	n := copy(b[eventHeaderSize:], body)
	end := eventHeaderSize + int(pad(size))
	for i := eventHeaderSize + n; i < end; i++ {
		b[i] = 0
	}
	w.commit(eventHeaderSize + pad(size))
	return nil
}

// Forward appends a copy of the event.
func (w *SequenceWriter) Forward(e Event) error {
	return w.Write(e.Frames, e.Type, e.Body)
}

// WriteNote appends a note event built from payload. Other kinds are
// ignored.
func (w *SequenceWriter) WriteNote(frames int64, p Payload) error {
	var status byte
	switch p.Kind {
	case NoteOn:
		status = 0x90
	case NoteOff:
		status = 0x80
	default:
		return nil
	}
	msg := [3]byte{status | p.Channel&0x0F, p.Pitch & 0x7F, p.Velocity & 0x7F}
	return w.Write(frames, w.ids.MidiEvent, msg[:])
}

// WriteMIDI appends a midi message.
func (w *SequenceWriter) WriteMIDI(frames int64, msg midi.Message) error {
	return w.Write(frames, w.ids.MidiEvent, msg)
}

// WriteTransport appends a time position object with the fields present
// in t. Values are stored as floats.
func (w *SequenceWriter) WriteTransport(frames int64, t Transport) error {
	var props uint32
	for _, has := range [...]bool{t.HasBPM, t.HasSpeed, t.HasBarBeat} {
		if has {
			props++
		}
	}
	// every property is a float padded to 8 bytes
	const propSize = propertyHeader + 8
	size := objectHeader + props*propSize
	if err := w.reserve(eventHeaderSize + pad(size)); err != nil {
		return err
	}

	b := w.buf[w.n:]
	le.PutUint64(b[0:8], uint64(frames))
	putHeader(b[8:16], size, w.ids.Object)
	obj := b[eventHeaderSize:]
	le.PutUint32(obj[0:4], 0)
	le.PutUint32(obj[4:8], uint32(w.ids.Position))
	p := obj[objectHeader:]
	put := func(key urid.URID, v float64) {
		le.PutUint32(p[0:4], uint32(key))
		le.PutUint32(p[4:8], 0)
		putHeader(p[8:16], 4, w.ids.Float)
		le.PutUint32(p[16:20], math.Float32bits(float32(v)))
		le.PutUint32(p[20:24], 0)
		p = p[propSize:]
	}
	if t.HasBPM {
		put(w.ids.BeatsPerMinute, t.BPM)
	}
	if t.HasSpeed {
		put(w.ids.Speed, t.Speed)
	}
	if t.HasBarBeat {
		put(w.ids.BarBeat, t.BarBeat)
	}
	w.commit(eventHeaderSize + pad(size))
	return nil
}

// Bytes returns the written sequence.
func (w *SequenceWriter) Bytes() []byte {
	return w.buf[:w.n]
}

// Sequence returns the written sequence for reading.
func (w *SequenceWriter) Sequence() Sequence {
	return ReadSequence(w.Bytes(), w.ids)
}

func (w *SequenceWriter) reserve(n uint64) error {
	if w.buf == nil || uint64(w.n)+n > uint64(len(w.buf)) {
		return ErrFull
	}
	return nil
}

func (w *SequenceWriter) commit(n uint64) {
	w.n += int(n)
	putHeader(w.buf, uint32(w.n-headerSize), w.ids.Sequence)
}
