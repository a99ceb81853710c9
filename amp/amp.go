// Package amp is an amplifier with gain control in dB.
package amp

import (
	"math"

	"pipelined.dev/lv2"
	"pipelined.dev/lv2/urid"
)

// URI of the plugin.
const URI = "urn:pipelined:lv2:amp"

// MinGain is the gain in dB at and below which the output is muted.
const MinGain = -90

// Descriptor of the plugin.
var Descriptor = lv2.Descriptor{
	URI:         URI,
	Name:        "Amp",
	Instantiate: Instantiate,
}

// Amp is the amplifier instance.
type Amp struct{}

// Instantiate creates an amplifier.
func Instantiate(info lv2.Info, _ urid.Mapper) (lv2.Plugin, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return Amp{}, nil
}

// Activate does nothing, amp has no state.
func (Amp) Activate() {}

// Run multiplies input by gain coefficient.
func (Amp) Run(p *lv2.Ports) {
	coef := Coefficient(p.Gain)
	n := len(p.Input)
	if n > len(p.Output) {
		n = len(p.Output)
	}
	for i := 0; i < n; i++ {
		p.Output[i] = p.Input[i] * coef
	}
	lv2.Silence(p.Output, n, len(p.Output))
}

// Coefficient converts gain in dB into linear coefficient.
func Coefficient(gain float32) float32 {
	if gain > MinGain {
		return float32(math.Pow(10, float64(gain)*0.05))
	}
	return 0
}
