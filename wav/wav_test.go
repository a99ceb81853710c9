package wav_test

import (
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/lv2/wav"
)

const bufferSize = 512

func sine(frames int) []float32 {
	s := make([]float32, frames)
	for i := range s {
		s[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/44100))
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		bitDepth wav.BitDepth
		frames   int
		delta    float64
	}{
		{bitDepth: wav.BitDepth16, frames: 2000, delta: 1e-4},
		{bitDepth: wav.BitDepth24, frames: bufferSize, delta: 1e-6},
		{bitDepth: wav.BitDepth32, frames: 100, delta: 1e-6},
	}
	for _, test := range tests {
		path := filepath.Join(t.TempDir(), "out.wav")
		signal := sine(test.frames)

		sink, err := wav.NewSink(path, test.bitDepth)
		require.NoError(t, err)
		sinkFn, err := sink.Sink("test", 44100, bufferSize)
		require.NoError(t, err)
		for i := 0; i < len(signal); i += bufferSize {
			end := i + bufferSize
			if end > len(signal) {
				end = len(signal)
			}
			require.NoError(t, sinkFn(signal[i:end]))
		}
		require.NoError(t, sink.Flush("test"))

		pump := wav.NewPump(path)
		pumpFn, sampleRate, err := pump.Pump("test", bufferSize)
		require.NoError(t, err)
		assert.Equal(t, 44100.0, sampleRate)

		var result []float32
		buf := make([]float32, bufferSize)
		for {
			n, err := pumpFn(buf)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			result = append(result, buf[:n]...)
		}
		require.NoError(t, pump.Flush("test"))
		assert.InDeltaSlice(t, signal, result, test.delta, "bit depth %d", test.bitDepth)
	}
}

func TestClipping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	sink, err := wav.NewSink(path, wav.BitDepth16)
	require.NoError(t, err)
	sinkFn, err := sink.Sink("test", 48000, 4)
	require.NoError(t, err)
	require.NoError(t, sinkFn([]float32{2, -2, 1, -1}))
	require.NoError(t, sink.Flush("test"))

	pumpFn, _, err := wav.NewPump(path).Pump("test", 4)
	require.NoError(t, err)
	buf := make([]float32, 4)
	n, err := pumpFn(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.InDeltaSlice(t, []float32{1, -1, 1, -1}, buf, 1e-4)
}

func TestErrors(t *testing.T) {
	_, err := wav.NewSink("out.wav", 8)
	assert.Equal(t, wav.ErrUnsupportedBitDepth, err)

	_, _, err = wav.NewPump(filepath.Join(t.TempDir(), "missing.wav")).Pump("test", bufferSize)
	assert.Error(t, err)
	assert.NoError(t, wav.NewPump("never-opened.wav").Flush("test"))
}
