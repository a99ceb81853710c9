//go:build portaudio

package portaudio_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/lv2/portaudio"
)

func TestSink(t *testing.T) {
	const (
		bufferSize = 512
		sampleRate = 44100
	)
	sink := portaudio.NewSink()
	sinkFn, err := sink.Sink("test", sampleRate, bufferSize)
	assert.Nil(t, err)

	buf := make([]float32, bufferSize)
	for written := 0; written < sampleRate/2; written += bufferSize {
		for i := range buf {
			buf[i] = float32(0.2 * math.Sin(2*math.Pi*440*float64(written+i)/sampleRate))
		}
		assert.Nil(t, sinkFn(buf))
	}
	assert.Nil(t, sink.Flush("test"))
}
