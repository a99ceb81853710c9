/*
Package segment splits a processing cycle into segments at event offsets.

A cycle of n frames with events at offsets o1 <= o2 <= ... is processed as

	WriteSegment(0, o1), Apply(e1), WriteSegment(o1, o2), Apply(e2), ...,
	WriteSegment(ok, n)

so every event takes effect exactly at its frame. Offsets are clamped to
[previous offset, n], which keeps segments ordered and makes their union
exactly [0, n) even for malformed input.
*/
package segment

import "pipelined.dev/lv2/atom"

// Processor is the state that is advanced by Walk.
type Processor interface {
	// WriteSegment renders frames [begin, end) with the current state.
	WriteSegment(begin, end int)
	// Apply changes the state with the event.
	Apply(e atom.Event)
}

// Walk processes n frames of a cycle interleaved with events of it.
func Walk(n int, it atom.Iterator, p Processor) {
	if n < 0 {
		n = 0
	}
	last := 0
	for it.Next() {
		e := it.Event()
		offset := clamp(e.Frames, last, n)
		p.WriteSegment(last, offset)
		p.Apply(e)
		last = offset
	}
	p.WriteSegment(last, n)
}

func clamp(v int64, min, max int) int {
	switch {
	case v < int64(min):
		return min
	case v > int64(max):
		return max
	}
	return int(v)
}
