package host

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type (
	// Event is a control event scheduled at absolute frame. Event carries
	// either a MIDI message or a tempo change.
	Event struct {
		Frame   int64
		Message midi.Message
		Tempo   float64
	}

	// Schedule is a list of events ordered by frame.
	Schedule []Event
)

// Sort orders events by frame. Events with the same frame keep their
// order.
func (s Schedule) Sort() {
	slices.SortStableFunc(s, func(a, b Event) int {
		return cmp.Compare(a.Frame, b.Frame)
	})
}

// Merge returns new sorted schedule with events of both schedules.
func (s Schedule) Merge(other Schedule) Schedule {
	merged := make(Schedule, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	merged.Sort()
	return merged
}

// End returns the frame of the last event.
func (s Schedule) End() int64 {
	var end int64
	for _, e := range s {
		if e.Frame > end {
			end = e.Frame
		}
	}
	return end
}

// LoadSMF reads standard MIDI file and returns events of all its tracks
// with time converted into frames. Tempo changes are returned as tempo
// events. Meta and system exclusive messages are skipped.
func LoadSMF(path string, sampleRate float64) (Schedule, error) {
	f, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read smf %v: %w", path, err)
	}
	var s Schedule
	for _, track := range f.Tracks {
		var ticks int64
		for _, ev := range track {
			ticks += int64(ev.Delta)
			frame := framesAt(f.TimeAt(ticks), sampleRate)
			var bpm float64
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				s = append(s, Event{Frame: frame, Tempo: bpm})
			case ev.Message.IsPlayable():
				s = append(s, Event{Frame: frame, Message: midi.Message(ev.Message)})
			}
		}
	}
	s.Sort()
	return s, nil
}

// framesAt converts microseconds into frames.
func framesAt(us int64, sampleRate float64) int64 {
	return int64(math.Round(float64(us) * sampleRate / 1e6))
}
