package dson

import (
	"fmt"
	"io"
)

// UploadToStream writes obj's full encoded form to w in one Write call,
// grounded in uploader_to_stream.h.
func UploadToStream(w io.Writer, obj Entry) error {
	_, err := w.Write(obj.encode(make([]byte, 0, obj.AllSize())))
	return err
}

// DownloadFromStream reads one complete header-prefixed entry from r,
// grounded in downloader_from_stream.h.
func DownloadFromStream(r io.Reader) (Entry, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	hdr := GetHeader(header)
	if !hdr.IsValid() {
		return nil, fmt.Errorf("dson: invalid header read from stream")
	}
	body := make([]byte, hdr.DataSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	entry, rest, err := DecodeEntry(append(header, body...))
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("dson: unexpected trailing bytes")
	}
	return entry, nil
}

// UploadToBuffer encodes obj into a freshly allocated buffer, grounded in
// uploader_to_buff.h.
func UploadToBuffer(obj Entry) []byte {
	return obj.encode(make([]byte, 0, obj.AllSize()))
}

// DownloadFromSharedBuf decodes a single top-level entry out of buf,
// requiring the whole of buf to be consumed, grounded in
// downloader_from_shared_buf.h.
func DownloadFromSharedBuf(buf []byte) (Entry, error) {
	entry, rest, err := DecodeEntry(buf)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("dson: %d trailing bytes after entry", len(rest))
	}
	return entry, nil
}
