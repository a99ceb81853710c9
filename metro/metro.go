/*
Package metro implements a metronome synchronized with host transport.

Every beat starts a click: a sine tone shaped by a linear attack and decay
envelope. The tone runs continuously, the envelope only gates it. Transport
messages change tempo and speed; a bar beat position hard-syncs the click
with the host, which may produce an audible discontinuity.
*/
package metro

import (
	"math"
	"time"

	"pipelined.dev/lv2"
	"pipelined.dev/lv2/atom"
	"pipelined.dev/lv2/segment"
	"pipelined.dev/lv2/urid"
)

// URI of the plugin.
const URI = "urn:pipelined:lv2:metro"

// Default configuration.
const (
	DefaultFrequency = 440.0 * 2
	DefaultAmplitude = 0.5
	DefaultAttack    = 5 * time.Millisecond
	DefaultDecay     = 75 * time.Millisecond
	DefaultTempo     = 120.0
)

// MaxFramesPerBeat limits the beat length of very slow tempos.
const MaxFramesPerBeat = math.MaxInt32

// Phase is the state of the click envelope.
type Phase uint8

// Envelope phases.
const (
	Attack Phase = iota
	Decay
	Off
)

func (p Phase) String() string {
	switch p {
	case Attack:
		return "Attack"
	case Decay:
		return "Decay"
	}
	return "Off"
}

// Descriptor of the plugin with default configuration.
var Descriptor = lv2.Descriptor{
	URI:         URI,
	Name:        "Metronome",
	Instantiate: Instantiate(),
}

type (
	// Option configures the metronome.
	Option func(*config)

	config struct {
		frequency float64
		amplitude float64
		attack    time.Duration
		decay     time.Duration
		tempo     float64
	}

	// Metro is the metronome instance.
	Metro struct {
		ids *atom.URIDs
		cfg config

		rate          float64
		bpm           float64
		speed         float64
		framesPerBeat int

		// frames since the start of the last click
		elapsed int
		// play offset in the wave
		waveOffset int
		phase      Phase

		// one cycle of the tone
		wave      []float32
		attackLen int
		decayLen  int

		out []float32
	}
)

// WithFrequency sets the tone frequency in Hz.
func WithFrequency(f float64) Option {
	return func(c *config) {
		c.frequency = f
	}
}

// WithAmplitude sets the tone amplitude.
func WithAmplitude(a float64) Option {
	return func(c *config) {
		c.amplitude = a
	}
}

// WithAttack sets attack duration of the click.
func WithAttack(d time.Duration) Option {
	return func(c *config) {
		c.attack = d
	}
}

// WithDecay sets decay duration of the click.
func WithDecay(d time.Duration) Option {
	return func(c *config) {
		c.decay = d
	}
}

// WithTempo sets tempo used until the host sends transport.
func WithTempo(bpm float64) Option {
	return func(c *config) {
		c.tempo = bpm
	}
}

// Instantiate returns constructor of metronome instances.
func Instantiate(options ...Option) lv2.InstantiateFunc {
	cfg := config{
		frequency: DefaultFrequency,
		amplitude: DefaultAmplitude,
		attack:    DefaultAttack,
		decay:     DefaultDecay,
		tempo:     DefaultTempo,
	}
	for _, option := range options {
		option(&cfg)
	}
	return func(info lv2.Info, m urid.Mapper) (lv2.Plugin, error) {
		metro, err := newMetro(info, m, cfg)
		if err != nil {
			return nil, err
		}
		return metro, nil
	}
}

// newMetro creates a metronome instance. The returned instance is active.
func newMetro(info lv2.Info, m urid.Mapper, cfg config) (*Metro, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if !validTempo(cfg.tempo) {
		return nil, lv2.ErrInvalidTempo
	}

	rate := info.SampleRate
	waveLen := 1
	if cfg.frequency > 0 && rate/cfg.frequency > 1 {
		waveLen = int(rate / cfg.frequency)
	}
	wave := make([]float32, waveLen)
	for i := range wave {
		wave[i] = float32(math.Sin(float64(i)*2*math.Pi*cfg.frequency/rate) * cfg.amplitude)
	}

	metro := Metro{
		ids:       atom.NewURIDs(m),
		cfg:       cfg,
		rate:      rate,
		wave:      wave,
		attackLen: frames(cfg.attack, rate),
		decayLen:  frames(cfg.decay, rate),
	}
	metro.Activate()
	return &metro, nil
}

// Activate resets transport and envelope state.
func (m *Metro) Activate() {
	m.setTempo(m.cfg.tempo)
	m.speed = 0
	m.elapsed = 0
	m.waveOffset = 0
	m.phase = Off
}

// Run renders the cycle.
func (m *Metro) Run(p *lv2.Ports) {
	m.out = p.Output
	segment.Walk(len(p.Output), atom.ReadSequence(p.Control, m.ids).Iter(), m)
	m.out = nil
}

// Phase returns current envelope phase.
func (m *Metro) Phase() Phase {
	return m.phase
}

// FramesPerBeat returns length of a beat at current tempo.
func (m *Metro) FramesPerBeat() int {
	return m.framesPerBeat
}

// WriteSegment renders the click for frames [begin, end).
func (m *Metro) WriteSegment(begin, end int) {
	if m.speed == 0 {
		lv2.Silence(m.out, begin, end)
		return
	}

	for i := begin; i < end; i++ {
		if m.phase == Attack && m.elapsed >= m.attackLen {
			m.phase = Decay
		}
		if m.phase == Decay && m.elapsed >= m.attackLen+m.decayLen {
			m.phase = Off
		}

		switch m.phase {
		case Attack:
			m.out[i] = m.wave[m.waveOffset] * float32(m.elapsed) / float32(m.attackLen)
		case Decay:
			m.out[i] = m.wave[m.waveOffset] * (1 - float32(m.elapsed-m.attackLen)/float32(m.decayLen))
		default:
			m.out[i] = 0
		}

		// the tone keeps running regardless of the envelope
		m.waveOffset++
		if m.waveOffset == len(m.wave) {
			m.waveOffset = 0
		}

		m.elapsed++
		if m.elapsed >= m.framesPerBeat {
			m.elapsed = 0
			m.phase = Attack
		}
	}
}

// Apply handles transport updates. Tempo and speed are applied before the
// position.
func (m *Metro) Apply(e atom.Event) {
	if e.Kind != atom.TransportInfo {
		return
	}
	t := e.Transport
	if t.HasBPM && validTempo(t.BPM) {
		m.setTempo(t.BPM)
	}
	if t.HasSpeed && !math.IsNaN(t.Speed) {
		m.speed = t.Speed
	}
	if t.HasBarBeat && !math.IsNaN(t.BarBeat) && !math.IsInf(t.BarBeat, 0) {
		m.sync(t.BarBeat)
	}
}

// sync jumps to the position within the beat.
func (m *Metro) sync(barBeat float64) {
	beat := barBeat - math.Floor(barBeat)
	m.elapsed = int(beat * float64(m.framesPerBeat))
	switch {
	case m.elapsed < m.attackLen:
		m.phase = Attack
	case m.elapsed < m.attackLen+m.decayLen:
		m.phase = Decay
	default:
		m.phase = Off
	}
}

func (m *Metro) setTempo(bpm float64) {
	m.bpm = bpm
	fpb := math.Round(60 / bpm * m.rate)
	switch {
	case fpb > MaxFramesPerBeat:
		m.framesPerBeat = MaxFramesPerBeat
	case fpb < 1:
		m.framesPerBeat = 1
	default:
		m.framesPerBeat = int(fpb)
	}
}

func validTempo(bpm float64) bool {
	return bpm > 0 && !math.IsInf(bpm, 0)
}

func frames(d time.Duration, rate float64) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * rate))
}
