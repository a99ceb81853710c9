package host_test

import (
	"context"
	"fmt"

	"pipelined.dev/lv2/host"
	"pipelined.dev/lv2/internal/mock"
	"pipelined.dev/lv2/log"
	"pipelined.dev/lv2/metro"
)

// Render one second of metronome clicks.
func ExampleStart() {
	s, err := host.NewSession(metro.Descriptor,
		host.WithSampleRate(48000),
		host.WithFrames(48000),
		host.WithTempo(120),
		host.WithLogger(log.Discard()),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	sink := &mock.Sink{}
	r, err := host.Start(context.Background(), s, sink)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := r.Wait(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(sink.Buffer()))
	// Output: 48000
}
