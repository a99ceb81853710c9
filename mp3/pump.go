package mp3

import (
	"errors"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// Pump allows to read mp3 files.
type Pump struct {
	path string
	f    *os.File
	d    *mp3.Decoder
	done bool
}

// NewPump creates new mp3 Pump.
func NewPump(path string) *Pump {
	return &Pump{path: path}
}

// Pump opens the file and returns the read function along with decoded
// sample rate.
func (p *Pump) Pump(runID string, bufferSize int) (func([]float32) (int, error), float64, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, 0, err
	}
	d, err := mp3.NewDecoder(f)
	if err != nil {
		if errClose := f.Close(); errClose != nil {
			return nil, 0, errClose
		}
		return nil, 0, err
	}
	p.f = f
	p.d = d

	buf := make([]byte, bufferSize*bytesPerFrame)
	return func(b []float32) (int, error) {
		if p.done {
			return 0, io.EOF
		}
		if n := len(b) * bytesPerFrame; n > len(buf) {
			buf = make([]byte, n)
		}
		read, err := io.ReadFull(p.d, buf[:len(b)*bytesPerFrame])
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			p.done = true
		case err != nil:
			return 0, err
		}
		frames := read / bytesPerFrame
		if frames == 0 {
			return 0, io.EOF
		}
		for i := 0; i < frames; i++ {
			l := int16(le.Uint16(buf[i*bytesPerFrame:]))
			r := int16(le.Uint16(buf[i*bytesPerFrame+2:]))
			b[i] = float32(int(l)+int(r)) / 2 / scale
		}
		return frames, nil
	}, float64(d.SampleRate()), nil
}

// Flush closes the file.
func (p *Pump) Flush(string) error {
	if p.f == nil {
		return nil
	}
	return p.f.Close()
}
