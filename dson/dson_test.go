package dson

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{Key: 7, DataSize: 42, DataType: TypeString}
	buf := make([]byte, HeaderSize)
	PutHeader(buf, h)
	require.Equal(t, h, GetHeader(buf))
	require.True(t, h.IsValid())
}

func TestLeaf_ScalarRoundTrip(t *testing.T) {
	root := NewObject(0)
	root.Put(NewBool(1, true))
	root.Put(NewInt32(2, -12345))
	root.Put(NewUint64(3, 9999999999))
	root.Put(NewDouble(4, 3.5))
	root.Put(NewString(5, "hello"))
	root.Put(NewInt32Slice(6, []int32{1, 2, 3}))

	encoded := root.Encode()
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, 6, decoded.Len())

	e, ok := decoded.Get(1)
	require.True(t, ok)
	b, err := e.(Leaf).Bool()
	require.NoError(t, err)
	require.True(t, b)

	e, ok = decoded.Get(5)
	require.True(t, ok)
	s, err := e.(Leaf).String()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	e, ok = decoded.Get(6)
	require.True(t, ok)
	sl, err := e.(Leaf).Int32Slice()
	require.NoError(t, err)
	require.Equal(t, []int32{1, 2, 3}, sl)
}

func TestObject_Nested(t *testing.T) {
	root := NewObject(0)
	child := NewObject(10)
	child.Put(NewString(11, "nested"))
	root.Put(child)
	root.Put(NewInt32(20, 5))

	decoded, err := Decode(root.Encode())
	require.NoError(t, err)

	e, ok := decoded.Get(10)
	require.True(t, ok)
	nestedObj, ok := e.(*Object)
	require.True(t, ok)
	e2, ok := nestedObj.Get(11)
	require.True(t, ok)
	s, err := e2.(Leaf).String()
	require.NoError(t, err)
	require.Equal(t, "nested", s)
}

func TestObject_Get_ResolvesDuplicateKeyByInsertionOrder(t *testing.T) {
	root := NewObject(0)
	root.Put(NewInt32(1, 100))
	root.Put(NewInt32(1, 200))

	e, ok := root.Get(1)
	require.True(t, ok)
	v, err := e.(Leaf).Int32()
	require.NoError(t, err)
	require.Equal(t, int32(100), v)
	require.Len(t, root.All(1), 2)
}

func TestByteView_AliasesDecodeBuffer(t *testing.T) {
	root := NewObject(0)
	root.Put(NewByteView(1, []byte("abc")))
	encoded := root.Encode()

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	e, ok := decoded.Get(1)
	require.True(t, ok)
	b, err := e.(Leaf).Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), b)

	encoded[len(encoded)-1] = 'z'
	b2, _ := e.(Leaf).Bytes()
	require.Equal(t, byte('z'), b2[len(b2)-1], "byte view must alias the decode buffer")
}

func TestByteOwned_SurvivesBufferMutation(t *testing.T) {
	root := NewObject(0)
	root.Put(NewByteOwned(1, []byte("abc")))
	encoded := root.Encode()

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	e, _ := decoded.Get(1)

	encoded[len(encoded)-1] = 'z'
	b, err := e.(Leaf).Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), b, "owned bytes must not change when the source buffer mutates")
}

func TestEditController_FolderNavigation(t *testing.T) {
	root := NewObject(0)
	child := NewObject(10)
	child.Put(NewInt32(11, 1))
	root.Put(child)
	root.Put(NewInt32(20, 2))

	c := NewEditController(root)
	require.Equal(t, 2, c.ItemsOnLevel())

	require.NoError(t, c.OpenFolder(0))
	require.Equal(t, 1, c.ItemsOnLevel())
	require.Equal(t, int32(10), c.ObjKey())

	idx, err := c.CloseFolder()
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, 2, c.ItemsOnLevel())

	_, err = c.CloseFolder()
	require.Error(t, err)
}

func TestObject_String_ProducesNestedOutput(t *testing.T) {
	root := NewObject(0)
	root.Put(NewInt32(1, 42))
	out := root.String()
	require.Contains(t, out, `"key":0`)
	require.Contains(t, out, `"key":1`)
	require.Contains(t, out, `"data":42`)
}

func TestUploadDownload_Stream(t *testing.T) {
	root := NewObject(0)
	root.Put(NewString(1, "via-stream"))

	var buf bytes.Buffer
	require.NoError(t, UploadToStream(&buf, root))

	entry, err := DownloadFromStream(&buf)
	require.NoError(t, err)
	obj, ok := entry.(*Object)
	require.True(t, ok)
	e, ok := obj.Get(1)
	require.True(t, ok)
	s, err := e.(Leaf).String()
	require.NoError(t, err)
	require.Equal(t, "via-stream", s)
}

func TestUploadDownload_FD(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	root := NewObject(0)
	root.Put(NewUint64(1, 123456789))

	done := make(chan error, 1)
	go func() {
		done <- UploadToFD(int(w.Fd()), root)
	}()

	entry, err := DownloadFromFD(int(r.Fd()))
	require.NoError(t, err)
	require.NoError(t, <-done)

	obj, ok := entry.(*Object)
	require.True(t, ok)
	e, ok := obj.Get(1)
	require.True(t, ok)
	v, err := e.(Leaf).Uint64()
	require.NoError(t, err)
	require.Equal(t, uint64(123456789), v)
}

func TestDson_RouteIDAndEncode(t *testing.T) {
	d := NewDson(0)
	d.Root.Put(NewBool(1, true))
	require.False(t, func() bool { _, ok := d.GetRouteID(); return ok }())

	d.SetRouteID(RouteID(42))
	id, ok := d.GetRouteID()
	require.True(t, ok)
	require.Equal(t, RouteID(42), id)

	decoded, err := Decode(d.Encode())
	require.NoError(t, err)
	require.Equal(t, 1, decoded.Len())
}
