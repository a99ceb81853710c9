package urid_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/lv2/urid"
)

func TestCache(t *testing.T) {
	c := urid.NewCache()
	seq := c.Map(urid.AtomSequence)
	midi := c.Map(urid.MidiEvent)

	assert.NotEqual(t, urid.URID(0), seq)
	assert.NotEqual(t, seq, midi)
	assert.Equal(t, seq, c.Map(urid.AtomSequence))
	assert.Equal(t, urid.AtomSequence, c.Unmap(seq))
	assert.Equal(t, urid.MidiEvent, c.Unmap(midi))
	assert.Equal(t, "", c.Unmap(0))
	assert.Equal(t, "", c.Unmap(100))
	assert.Equal(t, urid.URID(0), c.Map(""))
	assert.Equal(t, 2, c.Len())
}

func TestCacheConcurrent(t *testing.T) {
	c := urid.NewCache()
	uris := []string{urid.TimePosition, urid.TimeBarBeat, urid.TimeSpeed, urid.TimeBeatsPerMinute}
	routines := 8
	results := make([][]urid.URID, routines)

	var wg sync.WaitGroup
	wg.Add(routines)
	for i := 0; i < routines; i++ {
		go func(i int) {
			defer wg.Done()
			for _, uri := range uris {
				results[i] = append(results[i], c.Map(uri))
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < routines; i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, len(uris), c.Len())
}
