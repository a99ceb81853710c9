package atom

import (
	"math"

	"gitlab.com/gomidi/midi/v2"

	"pipelined.dev/lv2/urid"
)

// Kind is the type of decoded event payload.
type Kind uint8

// Payload kinds.
const (
	Unrecognized Kind = iota
	NoteOn
	NoteOff
	ProgramChange
	TransportInfo
)

// MaxPitch is the highest representable MIDI note.
const MaxPitch = 127

type (
	// Event is a single entry of a sequence. Body aliases the buffer the
	// sequence was read from and is only valid during the cycle.
	Event struct {
		Frames int64
		Type   urid.URID
		Body   []byte
		Payload
	}

	// Payload is a decoded event body. Channel, Pitch and Velocity are set
	// for notes, Program for program changes and Transport for transport
	// info.
	Payload struct {
		Kind      Kind
		Channel   uint8
		Pitch     uint8
		Velocity  uint8
		Program   uint8
		Transport Transport
	}

	// Transport is a host transport update. Only fields with the
	// corresponding Has flag were present in the message.
	Transport struct {
		BPM        float64
		Speed      float64
		BarBeat    float64
		HasBPM     bool
		HasSpeed   bool
		HasBarBeat bool
	}
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case ProgramChange:
		return "ProgramChange"
	case TransportInfo:
		return "Transport"
	}
	return "Unrecognized"
}

// decode classifies the event body.
func (ids *URIDs) decode(typ urid.URID, body []byte) Payload {
	if typ == 0 {
		return Payload{}
	}
	switch typ {
	case ids.MidiEvent:
		return decodeMIDI(body)
	case ids.Object, ids.Blank:
		return ids.decodeObject(body)
	}
	return Payload{}
}

func decodeMIDI(body []byte) Payload {
	if len(body) == 0 {
		return Payload{}
	}
	// check lengths before handing bytes to the midi package
	switch body[0] & 0xF0 {
	case 0x80, 0x90:
		if len(body) < 3 {
			return Payload{}
		}
	case 0xC0:
		if len(body) < 2 {
			return Payload{}
		}
	default:
		return Payload{}
	}

	var ch, key, vel, program uint8
	msg := midi.Message(body)
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return Payload{Kind: NoteOn, Channel: ch, Pitch: key, Velocity: vel}
	case msg.GetNoteOff(&ch, &key, &vel):
		return Payload{Kind: NoteOff, Channel: ch, Pitch: key, Velocity: vel}
	case msg.GetProgramChange(&ch, &program):
		return Payload{Kind: ProgramChange, Channel: ch, Program: program}
	}
	return Payload{}
}

func (ids *URIDs) decodeObject(body []byte) Payload {
	if len(body) < objectHeader {
		return Payload{}
	}
	if urid.URID(le.Uint32(body[4:8])) != ids.Position {
		return Payload{}
	}

	var t Transport
	props := body[objectHeader:]
	for len(props) >= propertyHeader {
		key := urid.URID(le.Uint32(props[0:4]))
		size, typ := readHeader(props[8:16])
		if uint64(size) > uint64(len(props)-propertyHeader) {
			break
		}
		if v, ok := ids.number(typ, props[propertyHeader:propertyHeader+int(size)]); ok {
			switch key {
			case ids.BeatsPerMinute:
				t.BPM, t.HasBPM = v, true
			case ids.Speed:
				t.Speed, t.HasSpeed = v, true
			case ids.BarBeat:
				t.BarBeat, t.HasBarBeat = v, true
			}
		}
		next := propertyHeader + pad(size)
		if next >= uint64(len(props)) {
			break
		}
		props = props[next:]
	}
	return Payload{Kind: TransportInfo, Transport: t}
}

// number reads numeric atom body.
func (ids *URIDs) number(typ urid.URID, b []byte) (float64, bool) {
	switch {
	case typ == ids.Float && len(b) >= 4:
		return float64(math.Float32frombits(le.Uint32(b))), true
	case typ == ids.Double && len(b) >= 8:
		return math.Float64frombits(le.Uint64(b)), true
	case typ == ids.Int && len(b) >= 4:
		return float64(int32(le.Uint32(b))), true
	case typ == ids.Long && len(b) >= 8:
		return float64(int64(le.Uint64(b))), true
	}
	return 0, false
}
