// Package mp3 provides a pump and a sink for mp3 files. Decoded audio is
// mixed down into mono. Encoded files are joint stereo with the mono
// signal in both channels.
package mp3

import "encoding/binary"

const (
	// DefaultBitRate is the bit rate of encoded files in kbps.
	DefaultBitRate = 192
	// DefaultQuality of the encoder, 0 is the best and 9 is the worst.
	DefaultQuality = 2

	// numChannels of both decoded and encoded streams.
	numChannels = 2
	// bytesPerFrame of 16-bit stereo stream.
	bytesPerFrame = 2 * numChannels
	// scale of 16-bit samples.
	scale = 1 << 15
)

var le = binary.LittleEndian
