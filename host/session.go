package host

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"pipelined.dev/lv2"
	"pipelined.dev/lv2/atom"
	"pipelined.dev/lv2/log"
	"pipelined.dev/lv2/metric"
	"pipelined.dev/lv2/mutable"
	"pipelined.dev/lv2/urid"
)

const (
	// DefaultSampleRate is used when neither option nor pump provide it.
	DefaultSampleRate = 48000
	// DefaultBufferSize is the default maximum cycle size.
	DefaultBufferSize = 512
	// DefaultNotifyCapacity is the default size of event buffers in bytes.
	DefaultNotifyCapacity = 8192
	// DefaultTempo of the transport.
	DefaultTempo = 120
	// BeatsPerBar of the transport.
	BeatsPerBar = 4

	// headerSize of the atom.
	headerSize = 8
)

type (
	// Session is a plugin instance with the buffers connected to its
	// ports. Session is mutable: transport, gain and plugin state can be
	// changed between cycles.
	Session struct {
		mutable.Context
		id         string
		descriptor lv2.Descriptor
		plugin     lv2.Plugin
		ids        *atom.URIDs

		sampleRate float64
		bufferSize int
		capacity   int
		limit      int64
		duration   time.Duration
		midiFile   string
		monitor    func(Cycle)
		gain       float32
		pump       Pump
		pumpFn     func([]float32) (int, error)
		schedule   Schedule
		next       int
		position   int64
		dropped    int
		transport  transport

		ports   lv2.Ports
		input   []float32
		output  []float32
		control []byte
		notify  []byte
		forge   atom.SequenceWriter

		logger  logrus.FieldLogger
		log     logrus.FieldLogger
		meter   metric.ResetFunc
		measure metric.MeasureFunc
	}

	// Cycle is the result of a single processing cycle. Slices are owned
	// by session and valid until the next cycle.
	Cycle struct {
		// Position is the frame of the first sample in the cycle.
		Position int64
		Output   []float32
		Notify   atom.Sequence
	}

	// transport keeps the musical position of the session.
	transport struct {
		bpm     float64
		beat    float64
		rolling bool
		changed bool
	}
)

// NewSession instantiates and activates the plugin and allocates all
// session buffers.
func NewSession(d lv2.Descriptor, options ...Option) (*Session, error) {
	if d.Instantiate == nil {
		return nil, fmt.Errorf("%q: %w", d.URI, ErrUnknownPlugin)
	}
	s := &Session{
		Context:    mutable.Mutable(),
		id:         xid.New().String(),
		descriptor: d,
		bufferSize: DefaultBufferSize,
		capacity:   DefaultNotifyCapacity,
		transport:  transport{bpm: DefaultTempo},
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	s.log = s.logger.WithFields(logrus.Fields{
		"session": s.id,
		"plugin":  d.URI,
	})
	if s.bufferSize <= 0 {
		return nil, ErrInvalidBufferSize
	}
	if s.transport.changed && !validTempo(s.transport.bpm) {
		return nil, lv2.ErrInvalidTempo
	}

	if s.pump != nil {
		fn, sampleRate, err := s.pump.Pump(s.id, s.bufferSize)
		if err != nil {
			return nil, fmt.Errorf("allocate pump: %w", err)
		}
		s.pumpFn = fn
		switch {
		case s.sampleRate == 0:
			s.sampleRate = sampleRate
		case s.sampleRate != sampleRate:
			return nil, s.fail(fmt.Errorf("%w: pump %v session %v", ErrSampleRateMismatch, sampleRate, s.sampleRate))
		}
	}
	if s.sampleRate == 0 {
		s.sampleRate = DefaultSampleRate
	}
	if s.limit == 0 && s.duration > 0 {
		s.limit = int64(math.Round(s.duration.Seconds() * s.sampleRate))
	}
	if s.midiFile != "" {
		schedule, err := LoadSMF(s.midiFile, s.sampleRate)
		if err != nil {
			return nil, s.fail(err)
		}
		s.schedule = s.schedule.Merge(schedule)
	}

	mapper := urid.NewCache()
	s.ids = atom.NewURIDs(mapper)
	plugin, err := d.Instantiate(lv2.Info{SampleRate: s.sampleRate}, mapper)
	if err != nil {
		return nil, s.fail(fmt.Errorf("instantiate %v: %w", d.URI, err))
	}
	s.plugin = plugin
	s.plugin.Activate()

	s.input = make([]float32, s.bufferSize)
	s.output = make([]float32, s.bufferSize)
	s.control = make([]byte, s.capacity)
	s.notify = make([]byte, s.capacity)
	s.meter = metric.Meter(plugin, s.sampleRate)
	s.schedule.Sort()
	s.log.WithFields(logrus.Fields{
		"sampleRate": s.sampleRate,
		"bufferSize": s.bufferSize,
		"events":     len(s.schedule),
	}).Debug("session created")
	return s, nil
}

// fail flushes allocated pump and returns provided error.
func (s *Session) fail(err error) error {
	if errFlush := s.Flush(); errFlush != nil {
		s.log.WithError(errFlush).Warn("flush failed")
	}
	return err
}

// ID returns unique session id.
func (s *Session) ID() string {
	return s.id
}

// Plugin returns the plugin instance.
func (s *Session) Plugin() lv2.Plugin {
	return s.plugin
}

// SampleRate returns the session sample rate.
func (s *Session) SampleRate() float64 {
	return s.sampleRate
}

// BufferSize returns the maximum number of frames per cycle.
func (s *Session) BufferSize() int {
	return s.bufferSize
}

// Position returns the number of processed frames.
func (s *Session) Position() int64 {
	return s.position
}

// Dropped returns the number of scheduled events that didn't fit into
// control buffer.
func (s *Session) Dropped() int {
	return s.dropped
}

// Process runs a single cycle. It returns io.EOF when the frame limit is
// reached or the pump is exhausted.
func (s *Session) Process() (Cycle, error) {
	n := s.bufferSize
	if s.limit > 0 {
		left := s.limit - s.position
		if left <= 0 {
			return Cycle{}, io.EOF
		}
		if left < int64(n) {
			n = int(left)
		}
	}
	input := s.input[:n]
	if s.pumpFn != nil {
		read, err := s.pumpFn(input)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Cycle{}, io.EOF
			}
			return Cycle{}, fmt.Errorf("pump: %w", err)
		}
		if read <= 0 {
			return Cycle{}, io.EOF
		}
		n = read
		input = input[:n]
	}
	if s.measure == nil {
		s.measure = s.meter()
	}

	events := s.forgeControl(n)
	if len(s.notify) >= headerSize {
		clear(s.notify[:headerSize])
	}
	s.ports.Control = s.forge.Bytes()
	s.ports.Notify = s.notify
	s.ports.Input = input
	s.ports.Output = s.output[:n]
	s.ports.Gain = s.gain
	s.plugin.Run(&s.ports)

	c := Cycle{
		Position: s.position,
		Output:   s.ports.Output,
		Notify:   atom.ReadSequence(s.notify, s.ids),
	}
	s.position += int64(n)
	s.transport.advance(n, s.sampleRate)
	s.measure(int64(n), int64(events))
	if s.monitor != nil {
		s.monitor(c)
	}
	return c, nil
}

// forgeControl writes transport changes and scheduled events of the next
// n frames into the control sequence. It returns the number of written
// events.
func (s *Session) forgeControl(n int) int {
	if err := s.forge.Init(s.control, s.ids); err != nil {
		s.dropScheduled(s.position + int64(n))
		return 0
	}
	var events int
	if s.transport.changed {
		if err := s.forge.WriteTransport(0, s.transport.position()); err != nil {
			s.log.WithError(err).Warn("transport dropped")
		} else {
			s.transport.changed = false
			events++
		}
	}
	end := s.position + int64(n)
	for ; s.next < len(s.schedule) && s.schedule[s.next].Frame < end; s.next++ {
		e := s.schedule[s.next]
		offset := e.Frame - s.position
		if offset < 0 {
			offset = 0
		}
		var err error
		switch {
		case len(e.Message) > 0:
			err = s.forge.WriteMIDI(offset, e.Message)
		case validTempo(e.Tempo):
			s.transport.bpm = e.Tempo
			err = s.forge.WriteTransport(offset, atom.Transport{BPM: e.Tempo, HasBPM: true})
		default:
			continue
		}
		if err != nil {
			s.dropped++
			s.log.WithFields(logrus.Fields{
				"frame": e.Frame,
			}).WithError(err).Warn("event dropped")
			continue
		}
		events++
	}
	return events
}

// dropScheduled skips events before the end frame.
func (s *Session) dropScheduled(end int64) {
	for ; s.next < len(s.schedule) && s.schedule[s.next].Frame < end; s.next++ {
		s.dropped++
	}
}

// Flush flushes the pump.
func (s *Session) Flush() error {
	if f, ok := s.pump.(Flusher); ok {
		return f.Flush(s.id)
	}
	return nil
}

// Play starts the transport.
func (s *Session) Play() mutable.Mutation {
	return s.Context.Mutate(func() error {
		s.transport.rolling = true
		s.transport.changed = true
		return nil
	})
}

// Stop stops the transport.
func (s *Session) Stop() mutable.Mutation {
	return s.Context.Mutate(func() error {
		s.transport.rolling = false
		s.transport.changed = true
		return nil
	})
}

// SetTempo changes the transport tempo.
func (s *Session) SetTempo(bpm float64) mutable.Mutation {
	return s.Context.Mutate(func() error {
		if !validTempo(bpm) {
			return lv2.ErrInvalidTempo
		}
		s.transport.bpm = bpm
		s.transport.changed = true
		return nil
	})
}

// Locate moves the transport to provided beat.
func (s *Session) Locate(beat float64) mutable.Mutation {
	return s.Context.Mutate(func() error {
		s.transport.beat = beat
		s.transport.changed = true
		return nil
	})
}

// SetGain changes the gain control port value.
func (s *Session) SetGain(gain float32) mutable.Mutation {
	return s.Context.Mutate(func() error {
		s.gain = gain
		return nil
	})
}

// Reset activates the plugin, which resets its state.
func (s *Session) Reset() mutable.Mutation {
	return s.Context.Mutate(func() error {
		s.plugin.Activate()
		return nil
	})
}

// position returns transport position event.
func (t *transport) position() atom.Transport {
	speed := 0.0
	if t.rolling {
		speed = 1
	}
	return atom.Transport{
		BPM:        t.bpm,
		Speed:      speed,
		BarBeat:    math.Mod(t.beat, BeatsPerBar),
		HasBPM:     true,
		HasSpeed:   true,
		HasBarBeat: true,
	}
}

// advance moves rolling transport by n frames.
func (t *transport) advance(n int, sampleRate float64) {
	if t.rolling {
		t.beat += float64(n) * t.bpm / 60 / sampleRate
	}
}

func validTempo(bpm float64) bool {
	return bpm > 0 && !math.IsInf(bpm, 0)
}
