package dson

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when a buffer ends before a header or payload
// it promised would be present.
var ErrTruncated = errors.New("dson: truncated buffer")

// DecodeEntry reads one header-prefixed entry from buf, returning the
// entry and buf's remaining, unconsumed bytes.
//
// A TypeByteView leaf's payload aliases buf directly rather than copying
// it — the leaf must not outlive buf. Every other leaf type, and every
// Object, copies what it needs out of buf, so it remains valid after buf
// is reused or discarded.
func DecodeEntry(buf []byte) (Entry, []byte, error) {
	if len(buf) < HeaderSize {
		return nil, buf, ErrTruncated
	}
	hdr := GetHeader(buf)
	if hdr.DataSize < 0 || int(hdr.DataSize) > len(buf)-HeaderSize {
		return nil, buf, ErrTruncated
	}
	payload := buf[HeaderSize : HeaderSize+int(hdr.DataSize)]
	rest := buf[HeaderSize+int(hdr.DataSize):]

	if hdr.DataType == TypeContainer {
		obj := NewObject(hdr.Key)
		body := payload
		for len(body) > 0 {
			child, remaining, err := DecodeEntry(body)
			if err != nil {
				return nil, buf, err
			}
			obj.Put(child)
			body = remaining
		}
		return obj, rest, nil
	}

	if hdr.DataType <= TypeNone || hdr.DataType > LastTypeID {
		return nil, buf, fmt.Errorf("dson: unknown type id %d", hdr.DataType)
	}

	if hdr.DataType == TypeByteView {
		return Leaf{key: hdr.Key, typeID: hdr.DataType, payload: payload}, rest, nil
	}

	owned := make([]byte, len(payload))
	copy(owned, payload)
	return Leaf{key: hdr.Key, typeID: hdr.DataType, payload: owned}, rest, nil
}

// Decode parses buf as a single top-level Object, header included.
func Decode(buf []byte) (*Object, error) {
	entry, rest, err := DecodeEntry(buf)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("dson: %d trailing bytes after top-level object", len(rest))
	}
	obj, ok := entry.(*Object)
	if !ok {
		return nil, fmt.Errorf("dson: top-level entry is not a container (type %s)", typeName(entry.DataType()))
	}
	return obj, nil
}
