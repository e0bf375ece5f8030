package dson

import (
	"encoding/binary"
	"math"
)

// NewInt8Slice creates an []int8 leaf under key.
func NewInt8Slice(key int32, v []int8) Leaf {
	payload := make([]byte, len(v))
	for i, x := range v {
		payload[i] = byte(x)
	}
	return Leaf{key: key, typeID: TypeInt8Slice, payload: payload}
}

// NewUint8Slice creates a []uint8 leaf under key.
func NewUint8Slice(key int32, v []uint8) Leaf {
	payload := make([]byte, len(v))
	copy(payload, v)
	return Leaf{key: key, typeID: TypeUint8Slice, payload: payload}
}

// NewInt16Slice creates an []int16 leaf under key.
func NewInt16Slice(key int32, v []int16) Leaf {
	payload := make([]byte, len(v)*2)
	for i, x := range v {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(x))
	}
	return Leaf{key: key, typeID: TypeInt16Slice, payload: payload}
}

// NewUint16Slice creates a []uint16 leaf under key.
func NewUint16Slice(key int32, v []uint16) Leaf {
	payload := make([]byte, len(v)*2)
	for i, x := range v {
		binary.LittleEndian.PutUint16(payload[i*2:], x)
	}
	return Leaf{key: key, typeID: TypeUint16Slice, payload: payload}
}

// NewInt32Slice creates an []int32 leaf under key.
func NewInt32Slice(key int32, v []int32) Leaf {
	payload := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(payload[i*4:], uint32(x))
	}
	return Leaf{key: key, typeID: TypeInt32Slice, payload: payload}
}

// NewUint32Slice creates a []uint32 leaf under key.
func NewUint32Slice(key int32, v []uint32) Leaf {
	payload := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(payload[i*4:], x)
	}
	return Leaf{key: key, typeID: TypeUint32Slice, payload: payload}
}

// NewInt64Slice creates an []int64 leaf under key.
func NewInt64Slice(key int32, v []int64) Leaf {
	payload := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(payload[i*8:], uint64(x))
	}
	return Leaf{key: key, typeID: TypeInt64Slice, payload: payload}
}

// NewUint64Slice creates a []uint64 leaf under key.
func NewUint64Slice(key int32, v []uint64) Leaf {
	payload := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(payload[i*8:], x)
	}
	return Leaf{key: key, typeID: TypeUint64Slice, payload: payload}
}

// NewDoubleSlice creates a []float64 leaf under key.
func NewDoubleSlice(key int32, v []float64) Leaf {
	payload := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(x))
	}
	return Leaf{key: key, typeID: TypeDoubleSlice, payload: payload}
}

// Int8Slice returns the leaf's value as an []int8.
func (l Leaf) Int8Slice() ([]int8, error) {
	if l.typeID != TypeInt8Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]int8, len(l.payload))
	for i, b := range l.payload {
		out[i] = int8(b)
	}
	return out, nil
}

// Uint8Slice returns the leaf's value as a []uint8.
func (l Leaf) Uint8Slice() ([]uint8, error) {
	if l.typeID != TypeUint8Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]uint8, len(l.payload))
	copy(out, l.payload)
	return out, nil
}

// Int16Slice returns the leaf's value as an []int16.
func (l Leaf) Int16Slice() ([]int16, error) {
	if l.typeID != TypeInt16Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]int16, len(l.payload)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(l.payload[i*2:]))
	}
	return out, nil
}

// Uint16Slice returns the leaf's value as a []uint16.
func (l Leaf) Uint16Slice() ([]uint16, error) {
	if l.typeID != TypeUint16Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]uint16, len(l.payload)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(l.payload[i*2:])
	}
	return out, nil
}

// Int32Slice returns the leaf's value as an []int32.
func (l Leaf) Int32Slice() ([]int32, error) {
	if l.typeID != TypeInt32Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]int32, len(l.payload)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(l.payload[i*4:]))
	}
	return out, nil
}

// Uint32Slice returns the leaf's value as a []uint32.
func (l Leaf) Uint32Slice() ([]uint32, error) {
	if l.typeID != TypeUint32Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]uint32, len(l.payload)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(l.payload[i*4:])
	}
	return out, nil
}

// Int64Slice returns the leaf's value as an []int64.
func (l Leaf) Int64Slice() ([]int64, error) {
	if l.typeID != TypeInt64Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]int64, len(l.payload)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(l.payload[i*8:]))
	}
	return out, nil
}

// Uint64Slice returns the leaf's value as a []uint64.
func (l Leaf) Uint64Slice() ([]uint64, error) {
	if l.typeID != TypeUint64Slice {
		return nil, ErrTypeMismatch
	}
	out := make([]uint64, len(l.payload)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(l.payload[i*8:])
	}
	return out, nil
}

// DoubleSlice returns the leaf's value as a []float64.
func (l Leaf) DoubleSlice() ([]float64, error) {
	if l.typeID != TypeDoubleSlice {
		return nil, ErrTypeMismatch
	}
	out := make([]float64, len(l.payload)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(l.payload[i*8:]))
	}
	return out, nil
}
