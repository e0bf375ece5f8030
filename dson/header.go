// Package dson implements a self-describing binary record format: every
// value on the wire is preceded by a fixed-size header naming its key,
// byte size, and type, so a reader can skip or interpret data it wasn't
// expecting without a schema. It is grounded in
// original_source/include/thread_highways/dson.
package dson

import "encoding/binary"

// HeaderSize is the fixed, on-the-wire size of a Header in bytes.
const HeaderSize = 12

// Header precedes every value in a Dson stream: the key identifying it
// within its container, the byte size of the payload that follows (not
// including the header itself), and the payload's type id from the
// type registry in types.go. Grounded in the header read out of
// header_ in downloader_from_fd.h, reconstructed here as three int32
// fields (original_source's header.h did not survive retrieval, but
// every call site treats Key/DataSize/DataType as fixed-width integers).
type Header struct {
	Key      int32
	DataSize int32
	DataType int32
}

// PutHeader writes h into the first HeaderSize bytes of buf in
// little-endian order. It panics if buf is shorter than HeaderSize.
//
// The wire format is fixed to little-endian rather than the originating
// library's native byte order, so that two Go processes on different
// architectures still interoperate; see the Open Questions section of
// DESIGN.md.
func PutHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Key))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.DataSize))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.DataType))
}

// GetHeader reads a Header from the first HeaderSize bytes of buf. It
// panics if buf is shorter than HeaderSize.
func GetHeader(buf []byte) Header {
	return Header{
		Key:      int32(binary.LittleEndian.Uint32(buf[0:4])),
		DataSize: int32(binary.LittleEndian.Uint32(buf[4:8])),
		DataType: int32(binary.LittleEndian.Uint32(buf[8:12])),
	}
}

// IsValid reports whether h carries a recognized, non-negative payload
// size and a type id within the registered range, mirroring
// detail::is_ok_header.
func (h Header) IsValid() bool {
	if h.DataSize < 0 {
		return false
	}
	return h.DataType > 0 && h.DataType <= LastTypeID
}

// IsContainer reports whether h describes a nested Object rather than a
// leaf value, mirroring detail::is_dson_header.
func (h Header) IsContainer() bool {
	return h.DataSize >= 0 && h.DataType == TypeContainer
}
