// Package portaudio plays audio on the default output device.
package portaudio

import (
	"github.com/gordonklaus/portaudio"
)

type (
	// Sink represets portaudio sink which allows to play audio using default device.
	Sink struct {
		buf    []float32
		stream *portaudio.Stream
	}
)

// NewSink returns new sink.
func NewSink() *Sink {
	return &Sink{}
}

// Sink writes the buffer of data to portaudio stream.
// It aslo initilizes a portaudio api with default stream.
func (s *Sink) Sink(runID string, sampleRate float64, bufferSize int) (func([]float32) error, error) {
	s.buf = make([]float32, bufferSize)
	err := portaudio.Initialize()
	if err != nil {
		return nil, err
	}
	s.stream, err = portaudio.OpenDefaultStream(0, 1, sampleRate, bufferSize, &s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	err = s.stream.Start()
	if err != nil {
		return nil, err
	}
	return func(b []float32) error {
		n := copy(s.buf, b)
		for i := n; i < len(s.buf); i++ {
			s.buf[i] = 0
		}
		return s.stream.Write()
	}, nil
}

// Flush terminates portaudio structures.
func (s *Sink) Flush(string) error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Stop()
	if err != nil {
		return err
	}
	err = s.stream.Close()
	if err != nil {
		return err
	}
	return portaudio.Terminate()
}
