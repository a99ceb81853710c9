package oto

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	samples := []float32{0, 0.5, -1}
	buf := make([]byte, 16)
	b := encode(buf, samples)
	assert.Len(t, b, 12)
	for i, v := range samples {
		assert.Equal(t, v, math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
}
