package dson

import (
	"fmt"
	"strings"
)

// String renders o, and everything nested inside it, as the indented
// pseudo-JSON text that DsonEditController's operator<< produces,
// grounded in dson_edit_controller_printer.h.
func (o *Object) String() string {
	var b strings.Builder
	c := NewEditController(o)
	fmt.Fprintf(&b, "{\"key\":%d,\n", c.ObjKey())
	printLevel(&b, c, 2)
	b.WriteString("}\n")
	return b.String()
}

func printLevel(b *strings.Builder, c *EditController, level int) {
	indent(b, level)
	b.WriteString("\"data\": [\n")
	n := c.ItemsOnLevel()
	for i := 0; i < n; i++ {
		entry := c.At(i)
		indent(b, level+2)
		fmt.Fprintf(b, "{\"key\":%d,\n", entry.ObjKey())
		if entry.DataType() == TypeContainer {
			if err := c.OpenFolder(i); err == nil {
				printLevel(b, c, level+4)
				_, _ = c.CloseFolder()
			}
		} else {
			indent(b, level+4)
			printLeaf(b, entry)
		}
		indent(b, level+2)
		if i < n-1 {
			b.WriteString("},\n")
		} else {
			b.WriteString("}\n")
		}
	}
	indent(b, level)
	b.WriteString("]\n")
}

func printLeaf(b *strings.Builder, entry Entry) {
	leaf, ok := entry.(Leaf)
	if !ok {
		b.WriteString("\"data\":\"type error\"\n")
		return
	}
	switch leaf.typeID {
	case TypeBool:
		v, _ := leaf.Bool()
		fmt.Fprintf(b, "\"data\":%t\n", v)
	case TypeInt8:
		v, _ := leaf.Int8()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeUint8:
		v, _ := leaf.Uint8()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeInt16:
		v, _ := leaf.Int16()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeUint16:
		v, _ := leaf.Uint16()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeInt32:
		v, _ := leaf.Int32()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeUint32:
		v, _ := leaf.Uint32()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeInt64:
		v, _ := leaf.Int64()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeUint64:
		v, _ := leaf.Uint64()
		fmt.Fprintf(b, "\"data\":%d\n", v)
	case TypeDouble:
		v, _ := leaf.Double()
		fmt.Fprintf(b, "\"data\":%g\n", v)
	case TypeString:
		v, _ := leaf.String()
		fmt.Fprintf(b, "\"data\":%q\n", v)
	case TypeInt8Slice:
		v, _ := leaf.Int8Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeUint8Slice:
		v, _ := leaf.Uint8Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeInt16Slice:
		v, _ := leaf.Int16Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeUint16Slice:
		v, _ := leaf.Uint16Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeInt32Slice:
		v, _ := leaf.Int32Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeUint32Slice:
		v, _ := leaf.Uint32Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeInt64Slice:
		v, _ := leaf.Int64Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeUint64Slice:
		v, _ := leaf.Uint64Slice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeDoubleSlice:
		v, _ := leaf.DoubleSlice()
		fmt.Fprintf(b, "\"data\":%v\n", v)
	case TypeByteView, TypeByteOwned:
		fmt.Fprintf(b, "\"data\":\"%s\"\n", leaf.TypeName())
	default:
		b.WriteString("\"data\":\"type error\"\n")
	}
}

func indent(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteByte(' ')
	}
}
