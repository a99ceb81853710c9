package urid

// Well-known URIs used by the plugins and the host.
const (
	AtomPrefix   = "http://lv2plug.in/ns/ext/atom#"
	AtomBlank    = AtomPrefix + "Blank"
	AtomDouble   = AtomPrefix + "Double"
	AtomFloat    = AtomPrefix + "Float"
	AtomInt      = AtomPrefix + "Int"
	AtomLong     = AtomPrefix + "Long"
	AtomObject   = AtomPrefix + "Object"
	AtomSequence = AtomPrefix + "Sequence"
	AtomChunk    = AtomPrefix + "Chunk"

	MidiPrefix = "http://lv2plug.in/ns/ext/midi#"
	MidiEvent  = MidiPrefix + "MidiEvent"

	TimePrefix         = "http://lv2plug.in/ns/ext/time#"
	TimePosition       = TimePrefix + "Position"
	TimeBarBeat        = TimePrefix + "barBeat"
	TimeBeatsPerMinute = TimePrefix + "beatsPerMinute"
	TimeSpeed          = TimePrefix + "speed"

	UnitsPrefix = "http://lv2plug.in/ns/extensions/units#"
	UnitsBeat   = UnitsPrefix + "beat"
	UnitsFrame  = UnitsPrefix + "frame"
)
