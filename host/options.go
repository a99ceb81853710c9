package host

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option provides a way to set functional parameters to session.
type Option func(*Session)

// WithSampleRate sets the session sample rate. If not set, sample rate of
// the pump is used or DefaultSampleRate if there is no pump.
func WithSampleRate(sampleRate float64) Option {
	return func(s *Session) {
		s.sampleRate = sampleRate
	}
}

// WithBufferSize sets the maximum number of frames per cycle.
func WithBufferSize(bufferSize int) Option {
	return func(s *Session) {
		s.bufferSize = bufferSize
	}
}

// WithNotifyCapacity sets the size in bytes of control and notify buffers.
func WithNotifyCapacity(capacity int) Option {
	return func(s *Session) {
		if capacity < 0 {
			capacity = 0
		}
		s.capacity = capacity
	}
}

// WithFrames limits the number of frames processed by the session. Zero
// means no limit.
func WithFrames(frames int64) Option {
	return func(s *Session) {
		s.limit = frames
	}
}

// WithLogger sets the session logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithPump sets the source of audio input. Without pump the input is
// silent.
func WithPump(pump Pump) Option {
	return func(s *Session) {
		s.pump = pump
	}
}

// WithSchedule sets control events delivered to the plugin.
func WithSchedule(schedule Schedule) Option {
	return func(s *Session) {
		s.schedule = schedule
	}
}

// WithTempo starts the transport with provided tempo. The transport
// position is sent to the plugin in the first cycle.
func WithTempo(bpm float64) Option {
	return func(s *Session) {
		s.transport.bpm = bpm
		s.transport.rolling = true
		s.transport.changed = true
	}
}

// WithGain sets the gain control port value in dB.
func WithGain(gain float32) Option {
	return func(s *Session) {
		s.gain = gain
	}
}

// WithDuration limits the session duration. The limit is converted into
// frames once the sample rate is known. WithFrames takes precedence.
func WithDuration(d time.Duration) Option {
	return func(s *Session) {
		s.duration = d
	}
}

// WithMIDIFile loads the standard MIDI file and merges its events into
// the schedule.
func WithMIDIFile(path string) Option {
	return func(s *Session) {
		s.midiFile = path
	}
}

// WithMonitor sets a function that receives every processed cycle.
// Cycle content is valid only during the call.
func WithMonitor(fn func(Cycle)) Option {
	return func(s *Session) {
		s.monitor = fn
	}
}
