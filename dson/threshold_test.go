package dson

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadFromStreamToDestination_SmallPayloadStaysInMemory(t *testing.T) {
	root := NewObject(0)
	root.Put(NewString(1, "small"))

	var buf bytes.Buffer
	require.NoError(t, UploadToStream(&buf, root))

	fc := NewFileController(t.TempDir())
	defer fc.Close()

	entry, dest, err := DownloadFromStreamToDestination(&buf, fc)
	require.NoError(t, err)
	require.Nil(t, dest)
	obj, ok := entry.(*Object)
	require.True(t, ok)
	e, ok := obj.Get(1)
	require.True(t, ok)
	s, err := e.(Leaf).String()
	require.NoError(t, err)
	require.Equal(t, "small", s)
}

func TestDownloadFromStreamToDestination_LargePayloadSpillsToFile(t *testing.T) {
	root := NewObject(0)
	root.Put(NewByteOwned(1, make([]byte, FileBackedThreshold+1024)))

	var buf bytes.Buffer
	require.NoError(t, UploadToStream(&buf, root))

	fc := NewFileController(t.TempDir())
	defer fc.Close()

	entry, dest, err := DownloadFromStreamToDestination(&buf, fc)
	require.NoError(t, err)
	require.NotNil(t, dest)
	defer dest.Close()

	obj, ok := entry.(*Object)
	require.True(t, ok)
	require.Equal(t, 1, obj.Len())
	e, ok := obj.Get(1)
	require.True(t, ok)
	b, err := e.(Leaf).Bytes()
	require.NoError(t, err)
	require.Len(t, b, FileBackedThreshold+1024)
}

func TestDownloadFromFDToDestination_LargePayloadSpillsToFile(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	root := NewObject(0)
	root.Put(NewByteOwned(1, make([]byte, FileBackedThreshold+1024)))

	done := make(chan error, 1)
	go func() {
		defer w.Close()
		done <- UploadToFD(int(w.Fd()), root)
	}()

	fc := NewFileController(t.TempDir())
	defer fc.Close()

	entry, dest, err := DownloadFromFDToDestination(int(r.Fd()), fc)
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.NotNil(t, dest)
	defer dest.Close()

	obj, ok := entry.(*Object)
	require.True(t, ok)
	require.Equal(t, 1, obj.Len())
}

func TestFileController_CloseRemovesIssuedFiles(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileController(dir)

	f, err := fc.Create("leftover-*.dson")
	require.NoError(t, err)
	name := f.Name()
	require.NoError(t, f.Close())

	_, err = os.Stat(name)
	require.NoError(t, err)

	require.NoError(t, fc.Close())
	_, err = os.Stat(name)
	require.True(t, os.IsNotExist(err))
}
