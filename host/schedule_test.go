package host_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"pipelined.dev/lv2/host"
	"pipelined.dev/lv2/metro"
	"pipelined.dev/lv2/midigate"
)

func writeSMF(t *testing.T) string {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(120))
	// two beats at 120 bpm, then 60 bpm
	tempo.Add(1920, smf.MetaTempo(60))
	tempo.Close(0)
	require.NoError(t, s.Add(tempo))

	var notes smf.Track
	notes.Add(960, midi.NoteOn(0, 60, 100))
	notes.Add(480, midi.NoteOff(0, 60))
	// one beat at 60 bpm after the tempo change
	notes.Add(1440, midi.NoteOn(0, 62, 100))
	notes.Close(0)
	require.NoError(t, s.Add(notes))

	path := filepath.Join(t.TempDir(), "test.mid")
	require.NoError(t, s.WriteFile(path))
	return path
}

func TestLoadSMF(t *testing.T) {
	schedule, err := host.LoadSMF(writeSMF(t), 48000)
	require.NoError(t, err)

	expected := []struct {
		frame int64
		tempo float64
		key   uint8
		on    bool
	}{
		{frame: 0, tempo: 120},
		{frame: 24000, key: 60, on: true},
		{frame: 36000, key: 60},
		{frame: 48000, tempo: 60},
		{frame: 96000, key: 62, on: true},
	}
	require.Len(t, schedule, len(expected))
	for i, e := range expected {
		ev := schedule[i]
		assert.Equal(t, e.frame, ev.Frame, "event %d", i)
		if e.tempo > 0 {
			assert.InDelta(t, e.tempo, ev.Tempo, 1e-6, "event %d", i)
			assert.Empty(t, ev.Message)
			continue
		}
		var channel, key, velocity uint8
		if e.on {
			assert.True(t, ev.Message.GetNoteOn(&channel, &key, &velocity), "event %d", i)
		} else {
			assert.True(t, ev.Message.GetNoteOff(&channel, &key, &velocity), "event %d", i)
		}
		assert.Equal(t, e.key, key, "event %d", i)
	}
	assert.Equal(t, int64(96000), schedule.End())
}

func TestLoadSMFErrors(t *testing.T) {
	_, err := host.LoadSMF(filepath.Join(t.TempDir(), "missing.mid"), 48000)
	assert.Error(t, err)
}

func TestScheduleMerge(t *testing.T) {
	a := host.Schedule{{Frame: 10}, {Frame: 30}}
	b := host.Schedule{{Frame: 20}, {Frame: 10, Tempo: 90}}
	merged := a.Merge(b)
	frames := make([]int64, len(merged))
	for i := range merged {
		frames[i] = merged[i].Frame
	}
	assert.Equal(t, []int64{10, 10, 20, 30}, frames)
	assert.Zero(t, merged[0].Tempo, "stable order")
	assert.Equal(t, 90.0, merged[1].Tempo)
	assert.Equal(t, int64(30), merged.End())
	assert.Len(t, a, 2)
}

func TestRegistry(t *testing.T) {
	r := host.NewRegistry(metro.Descriptor, midigate.Descriptor)
	assert.Equal(t, []string{metro.URI, midigate.URI}, r.URIs())

	d, err := r.Lookup(metro.URI)
	require.NoError(t, err)
	assert.Equal(t, metro.URI, d.URI)

	d, err = r.Lookup("metronome")
	require.NoError(t, err)
	assert.Equal(t, metro.URI, d.URI)

	_, err = r.Lookup("urn:unknown")
	assert.True(t, errors.Is(err, host.ErrUnknownPlugin))
}
