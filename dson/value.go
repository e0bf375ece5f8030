package dson

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTypeMismatch is returned by a Leaf accessor when the leaf's
// DataType doesn't match the type being requested.
var ErrTypeMismatch = errors.New("dson: type mismatch")

// Entry is anything that can live inside an Object: a typed Leaf, or a
// nested Object acting as a container. Grounded in obj_view.h's IObjView,
// generalized past its virtual-dispatch shape into a small closed Go
// interface.
type Entry interface {
	ObjKey() int32
	DataType() int32
	DataSize() int32
	AllSize() int32
	encode(buf []byte) []byte
}

// Leaf is a single typed value with its own key, grounded in the
// scalar/string/slice/byte-buffer specializations types_map.h registers
// against IObjView.
type Leaf struct {
	key     int32
	typeID  int32
	payload []byte
}

// ObjKey returns the key this leaf is stored under in its Object.
func (l Leaf) ObjKey() int32 { return l.key }

// DataType returns the leaf's type id from the registry in types.go.
func (l Leaf) DataType() int32 { return l.typeID }

// DataSize returns the payload size in bytes, not counting the header.
func (l Leaf) DataSize() int32 { return int32(len(l.payload)) }

// AllSize returns the header size plus DataSize.
func (l Leaf) AllSize() int32 { return HeaderSize + l.DataSize() }

// TypeName returns the human-readable name of the leaf's type.
func (l Leaf) TypeName() string { return typeName(l.typeID) }

func (l Leaf) encode(buf []byte) []byte {
	var hdr [HeaderSize]byte
	PutHeader(hdr[:], Header{Key: l.key, DataSize: l.DataSize(), DataType: l.typeID})
	buf = append(buf, hdr[:]...)
	buf = append(buf, l.payload...)
	return buf
}

// NewBool creates a bool leaf under key.
func NewBool(key int32, v bool) Leaf {
	b := byte(0)
	if v {
		b = 1
	}
	return Leaf{key: key, typeID: TypeBool, payload: []byte{b}}
}

// NewInt8 creates an int8 leaf under key.
func NewInt8(key int32, v int8) Leaf {
	return Leaf{key: key, typeID: TypeInt8, payload: []byte{byte(v)}}
}

// NewUint8 creates a uint8 leaf under key.
func NewUint8(key int32, v uint8) Leaf {
	return Leaf{key: key, typeID: TypeUint8, payload: []byte{v}}
}

// NewInt16 creates an int16 leaf under key.
func NewInt16(key int32, v int16) Leaf {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, uint16(v))
	return Leaf{key: key, typeID: TypeInt16, payload: payload}
}

// NewUint16 creates a uint16 leaf under key.
func NewUint16(key int32, v uint16) Leaf {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, v)
	return Leaf{key: key, typeID: TypeUint16, payload: payload}
}

// NewInt32 creates an int32 leaf under key.
func NewInt32(key int32, v int32) Leaf {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(v))
	return Leaf{key: key, typeID: TypeInt32, payload: payload}
}

// NewUint32 creates a uint32 leaf under key.
func NewUint32(key int32, v uint32) Leaf {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, v)
	return Leaf{key: key, typeID: TypeUint32, payload: payload}
}

// NewInt64 creates an int64 leaf under key.
func NewInt64(key int32, v int64) Leaf {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, uint64(v))
	return Leaf{key: key, typeID: TypeInt64, payload: payload}
}

// NewUint64 creates a uint64 leaf under key.
func NewUint64(key int32, v uint64) Leaf {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, v)
	return Leaf{key: key, typeID: TypeUint64, payload: payload}
}

// NewDouble creates a float64 leaf under key.
func NewDouble(key int32, v float64) Leaf {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint64(payload, math.Float64bits(v))
	return Leaf{key: key, typeID: TypeDouble, payload: payload}
}

// NewString creates a string leaf under key.
func NewString(key int32, v string) Leaf {
	return Leaf{key: key, typeID: TypeString, payload: []byte(v)}
}

// NewByteView creates a leaf under key whose payload IS buf, aliased
// rather than copied: mutating buf afterward mutates the leaf, and the
// leaf must not outlive buf. Grounded on BufUCharView; supplemented per
// SPEC_FULL.md §D.
func NewByteView(key int32, buf []byte) Leaf {
	return Leaf{key: key, typeID: TypeByteView, payload: buf}
}

// NewByteOwned creates a leaf under key holding its own copy of buf, safe
// to keep past any mutation or reuse of buf. Grounded on BufUChar;
// supplemented per SPEC_FULL.md §D.
func NewByteOwned(key int32, buf []byte) Leaf {
	owned := make([]byte, len(buf))
	copy(owned, buf)
	return Leaf{key: key, typeID: TypeByteOwned, payload: owned}
}

// Bool returns the leaf's value as a bool.
func (l Leaf) Bool() (bool, error) {
	if l.typeID != TypeBool {
		return false, ErrTypeMismatch
	}
	return l.payload[0] != 0, nil
}

// Int8 returns the leaf's value as an int8.
func (l Leaf) Int8() (int8, error) {
	if l.typeID != TypeInt8 {
		return 0, ErrTypeMismatch
	}
	return int8(l.payload[0]), nil
}

// Uint8 returns the leaf's value as a uint8.
func (l Leaf) Uint8() (uint8, error) {
	if l.typeID != TypeUint8 {
		return 0, ErrTypeMismatch
	}
	return l.payload[0], nil
}

// Int16 returns the leaf's value as an int16.
func (l Leaf) Int16() (int16, error) {
	if l.typeID != TypeInt16 {
		return 0, ErrTypeMismatch
	}
	return int16(binary.LittleEndian.Uint16(l.payload)), nil
}

// Uint16 returns the leaf's value as a uint16.
func (l Leaf) Uint16() (uint16, error) {
	if l.typeID != TypeUint16 {
		return 0, ErrTypeMismatch
	}
	return binary.LittleEndian.Uint16(l.payload), nil
}

// Int32 returns the leaf's value as an int32.
func (l Leaf) Int32() (int32, error) {
	if l.typeID != TypeInt32 {
		return 0, ErrTypeMismatch
	}
	return int32(binary.LittleEndian.Uint32(l.payload)), nil
}

// Uint32 returns the leaf's value as a uint32.
func (l Leaf) Uint32() (uint32, error) {
	if l.typeID != TypeUint32 {
		return 0, ErrTypeMismatch
	}
	return binary.LittleEndian.Uint32(l.payload), nil
}

// Int64 returns the leaf's value as an int64.
func (l Leaf) Int64() (int64, error) {
	if l.typeID != TypeInt64 {
		return 0, ErrTypeMismatch
	}
	return int64(binary.LittleEndian.Uint64(l.payload)), nil
}

// Uint64 returns the leaf's value as a uint64.
func (l Leaf) Uint64() (uint64, error) {
	if l.typeID != TypeUint64 {
		return 0, ErrTypeMismatch
	}
	return binary.LittleEndian.Uint64(l.payload), nil
}

// Double returns the leaf's value as a float64.
func (l Leaf) Double() (float64, error) {
	if l.typeID != TypeDouble {
		return 0, ErrTypeMismatch
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(l.payload)), nil
}

// String returns the leaf's value as a string.
func (l Leaf) String() (string, error) {
	if l.typeID != TypeString {
		return "", ErrTypeMismatch
	}
	return string(l.payload), nil
}

// Bytes returns the leaf's raw payload, for TypeByteView or TypeByteOwned
// leaves. A TypeByteView result aliases memory the caller does not own;
// a TypeByteOwned result is safe to keep indefinitely.
func (l Leaf) Bytes() ([]byte, error) {
	if l.typeID != TypeByteView && l.typeID != TypeByteOwned {
		return nil, ErrTypeMismatch
	}
	return l.payload, nil
}
