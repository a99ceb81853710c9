package mp3

import (
	"os"

	"github.com/viert/lame"
)

// Sink allows to send data to mp3 files.
type Sink struct {
	path    string
	bitRate int
	quality int
	f       *os.File
	wr      *lame.LameWriter
}

// NewSink creates new Sink.
func NewSink(path string, bitRate, quality int) *Sink {
	return &Sink{
		path:    path,
		bitRate: bitRate,
		quality: quality,
	}
}

// Flush cleans up buffers.
func (s *Sink) Flush(string) error {
	if s.wr == nil {
		return nil
	}
	err := s.wr.Close()
	if err != nil {
		return err
	}
	return s.f.Close()
}

// Sink creates the file and returns the write function.
func (s *Sink) Sink(runID string, sampleRate float64, bufferSize int) (func([]float32) error, error) {
	f, err := os.Create(s.path)
	if err != nil {
		return nil, err
	}
	s.f = f
	s.wr = lame.NewWriter(f)
	s.wr.Encoder.SetBitrate(s.bitRate)
	s.wr.Encoder.SetQuality(s.quality)
	s.wr.Encoder.SetNumChannels(numChannels)
	s.wr.Encoder.SetInSamplerate(int(sampleRate))
	s.wr.Encoder.SetMode(lame.JOINT_STEREO)
	s.wr.Encoder.SetVBR(lame.VBR_RH)
	s.wr.Encoder.InitParams()

	buf := make([]byte, bufferSize*bytesPerFrame)
	return func(b []float32) error {
		if n := len(b) * bytesPerFrame; n > len(buf) {
			buf = make([]byte, n)
		}
		pcm := buf[:len(b)*bytesPerFrame]
		for i, v := range b {
			sample := uint16(asInt16(v))
			le.PutUint16(pcm[i*bytesPerFrame:], sample)
			le.PutUint16(pcm[i*bytesPerFrame+2:], sample)
		}
		_, err := s.wr.Write(pcm)
		return err
	}, nil
}

// asInt16 converts float sample into 16-bit integer, values outside of
// [-1, 1] are clipped.
func asInt16(v float32) int16 {
	switch {
	case v >= 1:
		return scale - 1
	case v <= -1:
		return -scale + 1
	}
	return int16(v * (scale - 1))
}
