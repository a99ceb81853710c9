package main

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"pipelined.dev/lv2/host"
	"pipelined.dev/lv2/metric"
	"pipelined.dev/lv2/mp3"
	"pipelined.dev/lv2/wav"
)

var errUnsupportedFormat = errors.New("unsupported file format")

// sessionFlags are shared by commands that run a session.
type sessionFlags struct {
	plugin  string
	in      string
	midi    string
	bpm     float64
	seconds float64
	rate    float64
	buffer  int
	gain    float64
	dump    bool
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func (f *sessionFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.plugin, "plugin", "", "plugin URI or name (required)")
	fs.StringVar(&f.in, "in", "", "input audio file, wav or mp3")
	fs.StringVar(&f.midi, "midi", "", "standard MIDI file with control events")
	fs.Float64Var(&f.bpm, "bpm", 0, "start transport with provided tempo")
	fs.Float64Var(&f.seconds, "seconds", 0, "duration to process, required without -in")
	fs.Float64Var(&f.rate, "rate", 0, fmt.Sprintf("sample rate, defaults to input rate or %d", host.DefaultSampleRate))
	fs.IntVar(&f.buffer, "buffer", host.DefaultBufferSize, "buffer size in frames")
	fs.Float64Var(&f.gain, "gain", 0, "gain control in dB")
	fs.BoolVar(&f.dump, "dump", false, "log plugin output events")
}

func (f *sessionFlags) Validate(live bool) error {
	var message string
	if f.plugin == "" {
		message = message + "Missing -plugin required flag\n"
	}
	if f.in == "" && f.seconds <= 0 && !live {
		message = message + "Missing -in or -seconds flag\n"
	}
	if message != "" {
		return errors.New(message)
	}
	return nil
}

func (f *sessionFlags) newSession(logger logrus.FieldLogger) (*host.Session, error) {
	d, err := registry.Lookup(f.plugin)
	if err != nil {
		return nil, err
	}
	options := []host.Option{
		host.WithLogger(logger),
		host.WithBufferSize(f.buffer),
		host.WithGain(float32(f.gain)),
		host.WithSampleRate(f.rate),
	}
	if f.in != "" {
		pump, err := newPump(f.in)
		if err != nil {
			return nil, err
		}
		options = append(options, host.WithPump(pump))
	}
	if f.midi != "" {
		options = append(options, host.WithMIDIFile(f.midi))
	}
	if f.bpm != 0 {
		options = append(options, host.WithTempo(f.bpm))
	}
	if f.seconds > 0 {
		options = append(options, host.WithDuration(time.Duration(f.seconds*float64(time.Second))))
	}
	if f.dump {
		options = append(options, host.WithMonitor(func(c host.Cycle) {
			if c.Notify.Len() == 0 {
				return
			}
			var events []interface{}
			for it := c.Notify.Iter(); it.Next(); {
				e := it.Event()
				events = append(events, e.Payload)
			}
			logger.WithField("position", c.Position).Debug(dumper.Sdump(events...))
		}))
	}
	return host.NewSession(d, options...)
}

// report logs plugin metrics.
func report(logger logrus.FieldLogger, s *host.Session) {
	fields := logrus.Fields{}
	for k, v := range metric.Get(s.Plugin()) {
		fields[k] = v
	}
	logger.WithFields(fields).Info("plugin metrics")
}

func newPump(path string) (host.Pump, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.NewPump(path), nil
	case ".mp3":
		return mp3.NewPump(path), nil
	}
	return nil, fmt.Errorf("%v: %w", path, errUnsupportedFormat)
}

func newSink(path string, bitDepth int) (host.Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.NewSink(path, wav.BitDepth(bitDepth))
	case ".mp3":
		return mp3.NewSink(path, mp3.DefaultBitRate, mp3.DefaultQuality), nil
	}
	return nil, fmt.Errorf("%v: %w", path, errUnsupportedFormat)
}
