package dson

// Type ids, grounded one-to-one on
// original_source/include/thread_highways/dson/detail/types_map.h's
// register_id<T, N> table. bool must stay the first numeric id and
// double the last, since code elsewhere range-checks
// [TypeBool, TypeDouble] to mean "is a number".
const (
	TypeNone        int32 = 0
	TypeContainer   int32 = 1
	TypeBool        int32 = 2
	TypeInt8        int32 = 3
	TypeUint8       int32 = 4
	TypeInt16       int32 = 5
	TypeUint16      int32 = 6
	TypeInt32       int32 = 7
	TypeUint32      int32 = 8
	TypeInt64       int32 = 9
	TypeUint64      int32 = 10
	TypeDouble      int32 = 11
	TypeString      int32 = 12
	TypeInt8Slice   int32 = 13
	TypeUint8Slice  int32 = 14
	TypeInt16Slice  int32 = 15
	TypeUint16Slice int32 = 16
	TypeInt32Slice  int32 = 17
	TypeUint32Slice int32 = 18
	TypeInt64Slice  int32 = 19
	TypeUint64Slice int32 = 20
	TypeDoubleSlice int32 = 21
	// TypeByteView is a zero-copy byte view over a decoder's own buffer,
	// grounded on BufUCharView; it stays valid only as long as that
	// buffer does. Supplemented per SPEC_FULL.md §D.
	TypeByteView int32 = 22
	// TypeByteOwned is an owned, independently-allocated copy of a byte
	// buffer, grounded on BufUChar. Supplemented per SPEC_FULL.md §D.
	TypeByteOwned int32 = 23

	// LastTypeID is the highest registered type id.
	LastTypeID = TypeByteOwned
)

// IsNumeric reports whether typeID identifies one of the fixed-width
// scalar number types (bool through double), matching the original's
// "type >= types_map<bool>::value && type <= types_map<double>::value"
// range check.
func IsNumeric(typeID int32) bool {
	return typeID >= TypeBool && typeID <= TypeDouble
}

func typeName(typeID int32) string {
	switch typeID {
	case TypeNone:
		return "none"
	case TypeContainer:
		return "container"
	case TypeBool:
		return "bool"
	case TypeInt8:
		return "int8"
	case TypeUint8:
		return "uint8"
	case TypeInt16:
		return "int16"
	case TypeUint16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeUint64:
		return "uint64"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeInt8Slice:
		return "[]int8"
	case TypeUint8Slice:
		return "[]uint8"
	case TypeInt16Slice:
		return "[]int16"
	case TypeUint16Slice:
		return "[]uint16"
	case TypeInt32Slice:
		return "[]int32"
	case TypeUint32Slice:
		return "[]uint32"
	case TypeInt64Slice:
		return "[]int64"
	case TypeUint64Slice:
		return "[]uint64"
	case TypeDoubleSlice:
		return "[]double"
	case TypeByteView:
		return "byte_view"
	case TypeByteOwned:
		return "byte_owned"
	default:
		return "unknown"
	}
}
