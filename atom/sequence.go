package atom

type (
	// Sequence is a timeline of events decoded from a buffer. Zero value
	// is an empty sequence.
	Sequence struct {
		ids    *URIDs
		events []byte
	}

	// Iterator walks over sequence events in buffer order.
	//
	//	it := seq.Iter()
	//	for it.Next() {
	//		e := it.Event()
	//	}
	Iterator struct {
		ids   *URIDs
		buf   []byte
		event Event
	}
)

// ReadSequence returns the sequence stored in buf. If buf doesn't contain
// a sequence with frame time stamps, an empty sequence is returned. If the
// size in the header exceeds the buffer, only the available bytes are
// used.
func ReadSequence(buf []byte, ids *URIDs) Sequence {
	if ids == nil || len(buf) < sequenceHeader {
		return Sequence{}
	}
	size, typ := readHeader(buf)
	if typ != ids.Sequence || size < sequenceHeader-headerSize {
		return Sequence{}
	}
	body := buf[headerSize:]
	if uint64(size) < uint64(len(body)) {
		body = body[:size]
	}
	// beat time stamps can't be mapped to frames without transport
	if unit := le.Uint32(body[0:4]); unit != 0 && unit != uint32(ids.Frame) {
		return Sequence{}
	}
	return Sequence{
		ids:    ids,
		events: body[8:],
	}
}

// Iter returns a new iterator positioned before the first event.
func (s Sequence) Iter() Iterator {
	return Iterator{
		ids: s.ids,
		buf: s.events,
	}
}

// Len returns the number of events in the sequence.
func (s Sequence) Len() int {
	var n int
	it := s.Iter()
	for it.Next() {
		n++
	}
	return n
}

// Next advances the iterator to the next event. It returns false when
// the sequence is exhausted or the next event is truncated.
func (it *Iterator) Next() bool {
	if len(it.buf) < eventHeaderSize {
		it.buf = nil
		return false
	}
	frames := int64(le.Uint64(it.buf[0:8]))
	size, typ := readHeader(it.buf[8:16])
	if uint64(size) > uint64(len(it.buf)-eventHeaderSize) {
		it.buf = nil
		return false
	}
	body := it.buf[eventHeaderSize : eventHeaderSize+int(size)]
	it.event = Event{
		Frames:  frames,
		Type:    typ,
		Body:    body,
		Payload: it.ids.decode(typ, body),
	}

	next := eventHeaderSize + pad(size)
	if next >= uint64(len(it.buf)) {
		it.buf = nil
	} else {
		it.buf = it.buf[next:]
	}
	return true
}

// Event returns the current event.
func (it *Iterator) Event() Event {
	return it.event
}
