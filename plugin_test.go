package lv2_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/lv2"
)

func TestInfoValidate(t *testing.T) {
	tests := []struct {
		rate     float64
		expected error
	}{
		{rate: 44100},
		{rate: 1},
		{rate: 0, expected: lv2.ErrInvalidSampleRate},
		{rate: -48000, expected: lv2.ErrInvalidSampleRate},
		{rate: math.NaN(), expected: lv2.ErrInvalidSampleRate},
		{rate: math.Inf(1), expected: lv2.ErrInvalidSampleRate},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, lv2.Info{SampleRate: test.rate}.Validate(), "rate %v", test.rate)
	}
}

func TestSilence(t *testing.T) {
	out := []float32{1, 2, 3, 4}
	lv2.Silence(out, 1, 10)
	assert.Equal(t, []float32{1, 0, 0, 0}, out)
	ports := lv2.Ports{Output: out}
	assert.Equal(t, 4, ports.Frames())
}
