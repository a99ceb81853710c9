package atom_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"pipelined.dev/lv2/atom"
	"pipelined.dev/lv2/urid"
)

func newURIDs() *atom.URIDs {
	return atom.NewURIDs(urid.NewCache())
}

func events(s atom.Sequence) []atom.Event {
	var result []atom.Event
	it := s.Iter()
	for it.Next() {
		result = append(result, it.Event())
	}
	return result
}

func TestReadSequenceEmpty(t *testing.T) {
	ids := newURIDs()
	header := func(size uint32, typ, unit urid.URID) []byte {
		b := make([]byte, 16)
		binary.LittleEndian.PutUint32(b[0:4], size)
		binary.LittleEndian.PutUint32(b[4:8], uint32(typ))
		binary.LittleEndian.PutUint32(b[8:12], uint32(unit))
		return b
	}
	tests := []struct {
		description string
		buf         []byte
	}{
		{description: "nil buffer"},
		{description: "short buffer", buf: make([]byte, 10)},
		{description: "wrong type", buf: header(8, ids.Chunk, ids.Frame)},
		{description: "beat units", buf: header(8, ids.Sequence, ids.Beat)},
		{description: "short size", buf: header(4, ids.Sequence, ids.Frame)},
		{description: "no events", buf: header(8, ids.Sequence, ids.Frame)},
	}
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			s := atom.ReadSequence(test.buf, ids)
			assert.Equal(t, 0, s.Len())
		})
	}
	assert.Equal(t, 0, atom.ReadSequence(header(8, ids.Sequence, ids.Frame), nil).Len())
}

func TestRoundTrip(t *testing.T) {
	ids := newURIDs()
	var w atom.SequenceWriter
	require.NoError(t, w.Init(make([]byte, 1024), ids))

	require.NoError(t, w.WriteMIDI(0, midi.NoteOn(1, 60, 100)))
	require.NoError(t, w.WriteMIDI(3, midi.NoteOffVelocity(1, 60, 64)))
	require.NoError(t, w.WriteMIDI(3, midi.ProgramChange(2, 1)))
	require.NoError(t, w.WriteTransport(5, atom.Transport{
		BPM: 140, HasBPM: true,
		BarBeat: 2.5, HasBarBeat: true,
	}))
	require.NoError(t, w.Write(6, ids.Chunk, []byte{1, 2, 3}))
	require.NoError(t, w.WriteNote(7, atom.Payload{Kind: atom.NoteOn, Channel: 3, Pitch: 67, Velocity: 90}))

	result := events(w.Sequence())
	require.Len(t, result, 6)

	assert.Equal(t, int64(0), result[0].Frames)
	assert.Equal(t, atom.Payload{Kind: atom.NoteOn, Channel: 1, Pitch: 60, Velocity: 100}, result[0].Payload)

	assert.Equal(t, int64(3), result[1].Frames)
	assert.Equal(t, atom.Payload{Kind: atom.NoteOff, Channel: 1, Pitch: 60, Velocity: 64}, result[1].Payload)

	assert.Equal(t, int64(3), result[2].Frames)
	assert.Equal(t, atom.ProgramChange, result[2].Kind)
	assert.Equal(t, uint8(1), result[2].Program)

	assert.Equal(t, int64(5), result[3].Frames)
	assert.Equal(t, atom.TransportInfo, result[3].Kind)
	assert.Equal(t, atom.Transport{BPM: 140, HasBPM: true, BarBeat: 2.5, HasBarBeat: true}, result[3].Transport)

	assert.Equal(t, atom.Unrecognized, result[4].Kind)
	assert.Equal(t, ids.Chunk, result[4].Type)
	assert.Equal(t, []byte{1, 2, 3}, result[4].Body)

	assert.Equal(t, atom.Payload{Kind: atom.NoteOn, Channel: 3, Pitch: 67, Velocity: 90}, result[5].Payload)
}

func TestIterRestart(t *testing.T) {
	ids := newURIDs()
	var w atom.SequenceWriter
	require.NoError(t, w.Init(make([]byte, 256), ids))
	require.NoError(t, w.WriteMIDI(1, midi.NoteOn(0, 10, 10)))
	require.NoError(t, w.WriteMIDI(2, midi.NoteOn(0, 11, 10)))

	s := w.Sequence()
	assert.Equal(t, events(s), events(s))
	assert.Equal(t, 2, s.Len())
}

func TestMalformed(t *testing.T) {
	ids := newURIDs()
	var w atom.SequenceWriter
	require.NoError(t, w.Init(make([]byte, 512), ids))

	// short note on
	require.NoError(t, w.Write(0, ids.MidiEvent, []byte{0x90, 60}))
	// empty midi
	require.NoError(t, w.Write(1, ids.MidiEvent, nil))
	// control change is not supported
	require.NoError(t, w.WriteMIDI(2, midi.ControlChange(0, 7, 100)))
	// object of other type
	obj := make([]byte, 8)
	binary.LittleEndian.PutUint32(obj[4:8], uint32(ids.Chunk))
	require.NoError(t, w.Write(3, ids.Object, obj))
	// object too short
	require.NoError(t, w.Write(4, ids.Blank, []byte{1, 2}))

	result := events(w.Sequence())
	require.Len(t, result, 5)
	for _, e := range result {
		assert.Equal(t, atom.Unrecognized, e.Kind, "event at %d", e.Frames)
	}
}

func TestTransportValueTypes(t *testing.T) {
	ids := newURIDs()
	property := func(key, typ urid.URID, body []byte) []byte {
		b := make([]byte, 16+(len(body)+7)&^7)
		binary.LittleEndian.PutUint32(b[0:4], uint32(key))
		binary.LittleEndian.PutUint32(b[8:12], uint32(len(body)))
		binary.LittleEndian.PutUint32(b[12:16], uint32(typ))
		copy(b[16:], body)
		return b
	}
	double := make([]byte, 8)
	binary.LittleEndian.PutUint64(double, math.Float64bits(0.75))
	long := make([]byte, 8)
	binary.LittleEndian.PutUint64(long, 90)
	integer := make([]byte, 4)
	binary.LittleEndian.PutUint32(integer, 1)

	obj := make([]byte, 8)
	binary.LittleEndian.PutUint32(obj[4:8], uint32(ids.Position))
	obj = append(obj, property(ids.BarBeat, ids.Double, double)...)
	obj = append(obj, property(ids.BeatsPerMinute, ids.Long, long)...)
	obj = append(obj, property(ids.Speed, ids.Int, integer)...)
	// unknown value type is skipped
	obj = append(obj, property(ids.Speed, ids.Chunk, []byte{9})...)

	var w atom.SequenceWriter
	require.NoError(t, w.Init(make([]byte, 512), ids))
	require.NoError(t, w.Write(0, ids.Blank, obj))

	result := events(w.Sequence())
	require.Len(t, result, 1)
	assert.Equal(t, atom.TransportInfo, result[0].Kind)
	assert.Equal(t, atom.Transport{
		BPM: 90, HasBPM: true,
		Speed: 1, HasSpeed: true,
		BarBeat: 0.75, HasBarBeat: true,
	}, result[0].Transport)
}

func TestTruncated(t *testing.T) {
	ids := newURIDs()
	var w atom.SequenceWriter
	require.NoError(t, w.Init(make([]byte, 256), ids))
	require.NoError(t, w.WriteMIDI(0, midi.NoteOn(0, 60, 100)))
	require.NoError(t, w.WriteMIDI(1, midi.NoteOn(0, 62, 100)))

	b := w.Bytes()
	// cut the second event in half, header still claims the full size
	truncated := b[:len(b)-12]
	result := events(atom.ReadSequence(truncated, ids))
	require.Len(t, result, 1)
	assert.Equal(t, uint8(60), result[0].Pitch)
}

func TestWriterFull(t *testing.T) {
	ids := newURIDs()
	var w atom.SequenceWriter
	assert.Equal(t, atom.ErrFull, w.Init(make([]byte, 8), ids))
	assert.Equal(t, atom.ErrFull, w.WriteMIDI(0, midi.NoteOn(0, 60, 100)))

	// header and exactly one three-byte event
	require.NoError(t, w.Init(make([]byte, 16+16+8), ids))
	require.NoError(t, w.WriteMIDI(0, midi.NoteOn(0, 60, 100)))
	assert.Equal(t, atom.ErrFull, w.WriteMIDI(1, midi.NoteOn(0, 61, 100)))
	assert.Equal(t, atom.ErrFull, w.WriteTransport(1, atom.Transport{}))

	result := events(w.Sequence())
	require.Len(t, result, 1)
	assert.Equal(t, uint8(60), result[0].Pitch)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NoteOn", atom.NoteOn.String())
	assert.Equal(t, "NoteOff", atom.NoteOff.String())
	assert.Equal(t, "ProgramChange", atom.ProgramChange.String())
	assert.Equal(t, "Transport", atom.TransportInfo.String())
	assert.Equal(t, "Unrecognized", atom.Unrecognized.String())
}
