package fifths_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"pipelined.dev/lv2"
	"pipelined.dev/lv2/atom"
	"pipelined.dev/lv2/fifths"
	"pipelined.dev/lv2/urid"
)

type event struct {
	offset int64
	msg    midi.Message
}

func newFifths(t *testing.T, options ...fifths.Option) (*fifths.Fifths, *atom.URIDs) {
	t.Helper()
	cache := urid.NewCache()
	p, err := fifths.Instantiate(options...)(lv2.Info{SampleRate: 44100}, cache)
	require.NoError(t, err)
	return p.(*fifths.Fifths), atom.NewURIDs(cache)
}

func control(t *testing.T, ids *atom.URIDs, events ...event) []byte {
	t.Helper()
	var w atom.SequenceWriter
	require.NoError(t, w.Init(make([]byte, 1024), ids))
	for _, e := range events {
		require.NoError(t, w.WriteMIDI(e.offset, e.msg))
	}
	return w.Bytes()
}

func read(ids *atom.URIDs, b []byte) []atom.Event {
	var result []atom.Event
	it := atom.ReadSequence(b, ids).Iter()
	for it.Next() {
		result = append(result, it.Event())
	}
	return result
}

func TestTranspose(t *testing.T) {
	tests := []struct {
		pitch    uint8
		interval int
		expected uint8
		ok       bool
	}{
		{pitch: 60, interval: 7, expected: 67, ok: true},
		{pitch: 120, interval: 7, expected: 127, ok: true},
		{pitch: 121, interval: 7},
		{pitch: 127, interval: 1},
		{pitch: 5, interval: -5, expected: 0, ok: true},
		{pitch: 4, interval: -5},
		{pitch: 0, interval: 0, expected: 0, ok: true},
	}
	for _, test := range tests {
		p, ok := fifths.Transpose(test.pitch, test.interval)
		assert.Equal(t, test.ok, ok, "%d%+d", test.pitch, test.interval)
		assert.Equal(t, test.expected, p, "%d%+d", test.pitch, test.interval)
	}
}

func TestRun(t *testing.T) {
	f, ids := newFifths(t)
	notify := make([]byte, 1024)
	f.Run(&lv2.Ports{
		Control: control(t, ids,
			event{5, midi.NoteOn(0, 60, 100)},
			event{6, midi.ControlChange(0, 7, 100)},
			event{7, midi.NoteOn(2, 125, 80)},
			event{9, midi.NoteOffVelocity(0, 60, 30)},
		),
		Notify: notify,
	})

	result := read(ids, notify)
	require.Len(t, result, 6)

	expected := []struct {
		offset  int64
		payload atom.Payload
	}{
		{5, atom.Payload{Kind: atom.NoteOn, Channel: 0, Pitch: 60, Velocity: 100}},
		{5, atom.Payload{Kind: atom.NoteOn, Channel: 0, Pitch: 67, Velocity: 100}},
		{6, atom.Payload{}},
		// out of range, forwarded only
		{7, atom.Payload{Kind: atom.NoteOn, Channel: 2, Pitch: 125, Velocity: 80}},
		{9, atom.Payload{Kind: atom.NoteOff, Channel: 0, Pitch: 60, Velocity: 30}},
		{9, atom.Payload{Kind: atom.NoteOff, Channel: 0, Pitch: 67, Velocity: 30}},
	}
	for i, e := range expected {
		assert.Equal(t, e.offset, result[i].Frames, "event %d", i)
		assert.Equal(t, e.payload, result[i].Payload, "event %d", i)
	}
	// unrecognized events are forwarded byte by byte
	assert.Equal(t, []byte(midi.ControlChange(0, 7, 100)), result[2].Body)
	assert.Equal(t, ids.MidiEvent, result[2].Type)
	assert.Equal(t, 0, f.Dropped())
}

func TestInterval(t *testing.T) {
	f, ids := newFifths(t, fifths.WithInterval(-12))
	notify := make([]byte, 256)
	f.Run(&lv2.Ports{
		Control: control(t, ids, event{0, midi.NoteOn(0, 60, 100)}, event{1, midi.NoteOn(0, 11, 100)}),
		Notify:  notify,
	})
	result := read(ids, notify)
	require.Len(t, result, 3)
	assert.Equal(t, uint8(60), result[0].Pitch)
	assert.Equal(t, uint8(48), result[1].Pitch)
	assert.Equal(t, uint8(11), result[2].Pitch)
}

func TestCapacity(t *testing.T) {
	// every midi event takes 24 bytes, the header 16
	tests := []struct {
		description string
		capacity    int
		pitches     []uint8
		dropped     int
	}{
		{
			description: "no room for header",
			capacity:    8,
			dropped:     2,
		},
		{
			description: "only header",
			capacity:    16 + 23,
			dropped:     2,
		},
		{
			description: "original without fifth",
			capacity:    16 + 24,
			pitches:     []uint8{60},
			dropped:     2,
		},
		{
			description: "first pair",
			capacity:    16 + 2*24,
			pitches:     []uint8{60, 67},
			dropped:     1,
		},
		{
			description: "second original",
			capacity:    16 + 3*24,
			pitches:     []uint8{60, 67, 62},
			dropped:     1,
		},
		{
			description: "everything",
			capacity:    16 + 4*24,
			pitches:     []uint8{60, 67, 62, 69},
		},
	}
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			f, ids := newFifths(t)
			notify := make([]byte, test.capacity)
			f.Run(&lv2.Ports{
				Control: control(t, ids, event{0, midi.NoteOn(0, 60, 100)}, event{1, midi.NoteOn(0, 62, 100)}),
				Notify:  notify,
			})
			var pitches []uint8
			for _, e := range read(ids, notify) {
				assert.Equal(t, atom.NoteOn, e.Kind)
				pitches = append(pitches, e.Pitch)
			}
			assert.Equal(t, test.pitches, pitches)
			assert.Equal(t, test.dropped, f.Dropped())
		})
	}
}

func TestEmptyInput(t *testing.T) {
	f, ids := newFifths(t)
	notify := make([]byte, 64)
	f.Run(&lv2.Ports{Notify: notify})
	assert.Len(t, read(ids, notify), 0)
	seq := atom.ReadSequence(notify, ids)
	assert.Equal(t, 0, seq.Len())
}
