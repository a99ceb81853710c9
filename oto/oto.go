// Package oto plays audio on the default output device with oto.
package oto

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// drainPoll is the interval to check if player is done on flush.
const drainPoll = 10 * time.Millisecond

// Sink plays audio with oto player. Oto pulls the samples, so the sink
// writes them into a pipe and blocks until the player consumes them.
type Sink struct {
	player *oto.Player
	pr     *io.PipeReader
	pw     *io.PipeWriter
}

// NewSink returns new sink.
func NewSink() *Sink {
	return &Sink{}
}

// Sink creates oto context and starts the player.
func (s *Sink) Sink(runID string, sampleRate float64, bufferSize int) (func([]float32) error, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	s.pr, s.pw = io.Pipe()
	s.player = ctx.NewPlayer(s.pr)
	s.player.Play()

	buf := make([]byte, bufferSize*4)
	return func(b []float32) error {
		if n := len(b) * 4; n > len(buf) {
			buf = make([]byte, n)
		}
		_, err := s.pw.Write(encode(buf, b))
		return err
	}, nil
}

// Flush waits until player is done and releases it.
func (s *Sink) Flush(string) error {
	if s.player == nil {
		return nil
	}
	if err := s.pw.Close(); err != nil {
		return err
	}
	for s.player.IsPlaying() {
		time.Sleep(drainPoll)
	}
	return s.player.Close()
}

// encode writes samples as float32 little endian bytes.
func encode(dst []byte, samples []float32) []byte {
	dst = dst[:len(samples)*4]
	for i, v := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	return dst
}
