// Package wav provides a pump and a sink for wav files. Files with
// multiple channels are mixed down into mono on read. Written files are
// mono.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth of the wav samples.
type BitDepth int

// Supported bit depths.
const (
	BitDepth16 BitDepth = 16
	BitDepth24 BitDepth = 24
	BitDepth32 BitDepth = 32
)

// pcm is the wav audio format of integer samples.
const pcm = 1

type (
	// Pump reads from wav file.
	// This component cannot be reused for consequent runs.
	Pump struct {
		path    string
		file    *os.File
		decoder *wav.Decoder
	}

	// Sink sink saves audio to wav file.
	Sink struct {
		path     string
		bitDepth BitDepth
		file     *os.File
		encoder  *wav.Encoder
	}
)

var (
	// ErrUnsupportedBitDepth is returned when unsupported bit depth is used.
	ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit depth is supported")
	// ErrInvalidFile is returned when pumped file is not a valid wav.
	ErrInvalidFile = errors.New("wav is not valid")
)

// Supported returns true if bit depth can be read and written.
func (bd BitDepth) Supported() bool {
	return bd == BitDepth16 || bd == BitDepth24 || bd == BitDepth32
}

// NewPump creates a new wav pump.
func NewPump(path string) *Pump {
	return &Pump{path: path}
}

// Flush closes the file.
func (p *Pump) Flush(string) error {
	if p.file == nil {
		return nil
	}
	return p.file.Close()
}

// Pump opens the file and returns the read function along with file's
// sample rate.
func (p *Pump) Pump(runID string, bufferSize int) (func([]float32) (int, error), float64, error) {
	file, err := os.Open(p.path)
	if err != nil {
		return nil, 0, err
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		if err := file.Close(); err != nil {
			return nil, 0, fmt.Errorf("failed to close invalid wav %v: %w", p.path, err)
		}
		return nil, 0, fmt.Errorf("%v: %w", p.path, ErrInvalidFile)
	}

	bitDepth := BitDepth(decoder.BitDepth)
	if !bitDepth.Supported() {
		if err := file.Close(); err != nil {
			return nil, 0, err
		}
		return nil, 0, ErrUnsupportedBitDepth
	}

	p.file = file
	p.decoder = decoder
	numChannels := int(decoder.NumChans)
	ib := &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, bufferSize*numChannels),
		SourceBitDepth: int(bitDepth),
	}

	return func(b []float32) (int, error) {
		ib.Data = ib.Data[:cap(ib.Data)]
		if need := len(b) * numChannels; need < len(ib.Data) {
			ib.Data = ib.Data[:need]
		}
		read, err := p.decoder.PCMBuffer(ib)
		if err != nil {
			return 0, err
		}
		if read == 0 {
			return 0, io.EOF
		}
		return mixDown(b, ib.Data[:read], numChannels, bitDepth), nil
	}, float64(decoder.SampleRate), nil
}

// NewSink creates new wav sink.
func NewSink(path string, bitDepth BitDepth) (*Sink, error) {
	if !bitDepth.Supported() {
		return nil, ErrUnsupportedBitDepth
	}
	return &Sink{
		path:     path,
		bitDepth: bitDepth,
	}, nil
}

// Flush flushes encoder.
func (s *Sink) Flush(string) error {
	if s.encoder == nil {
		return nil
	}
	err := s.encoder.Close()
	if err != nil {
		return err
	}
	return s.file.Close()
}

// Sink creates the file and returns the write function.
func (s *Sink) Sink(runID string, sampleRate float64, bufferSize int) (func([]float32) error, error) {
	f, err := os.Create(s.path)
	if err != nil {
		return nil, err
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, int(sampleRate), int(s.bitDepth), 1, pcm)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(sampleRate),
		},
		Data:           make([]int, bufferSize),
		SourceBitDepth: int(s.bitDepth),
	}

	return func(b []float32) error {
		ib.Data = ib.Data[:cap(ib.Data)]
		if len(b) > len(ib.Data) {
			ib.Data = make([]int, len(b))
		}
		ib.Data = ib.Data[:len(b)]
		asInts(ib.Data, b, s.bitDepth)
		return s.encoder.Write(ib)
	}, nil
}

// mixDown converts interleaved integer samples into mono float samples
// and returns the number of frames written.
func mixDown(dst []float32, src []int, numChannels int, bd BitDepth) int {
	if numChannels < 1 {
		return 0
	}
	scale := float64(int64(1) << (bd - 1))
	frames := len(src) / numChannels
	if frames > len(dst) {
		frames = len(dst)
	}
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < numChannels; c++ {
			sum += float64(src[i*numChannels+c])
		}
		dst[i] = float32(sum / float64(numChannels) / scale)
	}
	return frames
}

// asInts converts float samples into integers of provided bit depth.
// Values outside of [-1, 1] are clipped.
func asInts(dst []int, src []float32, bd BitDepth) {
	peak := float64(int64(1)<<(bd-1) - 1)
	for i, v := range src {
		f := float64(v)
		switch {
		case f > 1:
			f = 1
		case f < -1:
			f = -1
		}
		dst[i] = int(f * peak)
	}
}
