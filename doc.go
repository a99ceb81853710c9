/*
Package lv2 defines plugins that process audio and events in cycles.

# Concept

A host runs a plugin in cycles. Every cycle the host connects buffers to the
plugin ports and calls Run. Output audio must be written for every frame of
the cycle, events from the control sequence take effect exactly at their
frame offsets.

Plugins have a minimal life cycle:

	Instantiate - allocates all buffers and resolves URIDs;
	Activate - resets the state;
	Run - processes a single cycle.

Run is real-time safe: it doesn't block and doesn't allocate. Abnormal input
never results in an error during Run, instead it is absorbed with a defined
fallback: unknown events are skipped, out-of-range offsets are clamped and
event output that doesn't fit is truncated.

# Plugins

Every plugin package exposes a Descriptor:

	metro.Descriptor - metronome synchronized with host transport;
	midigate.Descriptor - passes audio only while notes are held;
	fifths.Descriptor - adds a fifth to every note;
	amp.Descriptor - amplifier with gain in dB.

# Host

The host package drives plugins from files, MIDI files and audio devices:

	s, err := host.NewSession(metro.Descriptor, host.WithSampleRate(48000))
	r, err := host.Start(ctx, s, sink)
	err = r.Wait()
*/
package lv2
