package dson

import (
	"fmt"
	"io"
)

// FileBackedThreshold is the payload size, in bytes, at or above which
// DownloadFromFDToDestination and DownloadFromStreamToDestination spill
// an incoming entry to a temp file rather than decoding it entirely into
// memory. 1MiB keeps the common case — small control messages — on the
// cheap in-memory path, while anything large enough to matter (bulk
// blobs, batch payloads) gets a file-backed destination a caller can
// Navigate and Save without holding a second full copy in memory.
const FileBackedThreshold = 1 << 20

// DownloadFromFDToDestination reads one complete header-prefixed entry
// from fd the way DownloadFromFD does, but routes payloads at or above
// FileBackedThreshold into a temp file issued by fc instead of decoding
// them into memory directly. dest is non-nil only when that happened;
// callers must Close it (which also releases the temp file once fc is
// itself closed) when done with the returned entry.
func DownloadFromFDToDestination(fd int, fc *FileController) (entry Entry, dest *DsonFromFile, err error) {
	header := make([]byte, HeaderSize)
	if err := readFullFromFD(fd, header); err != nil {
		return nil, nil, err
	}
	hdr := GetHeader(header)
	if !hdr.IsValid() {
		return nil, nil, fmt.Errorf("dson: invalid header read from fd")
	}

	if int(hdr.DataSize) < FileBackedThreshold {
		body := make([]byte, hdr.DataSize)
		if err := readFullFromFD(fd, body); err != nil {
			return nil, nil, err
		}
		e, rest, err := DecodeEntry(append(header, body...))
		if err != nil {
			return nil, nil, err
		}
		if len(rest) != 0 {
			return nil, nil, fmt.Errorf("dson: unexpected trailing bytes")
		}
		return e, nil, nil
	}

	f, err := fc.Create("dson-fd-*.dson")
	if err != nil {
		return nil, nil, err
	}
	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, nil, err
	}
	if err := copyFromFDInChunks(f, fd, int64(hdr.DataSize)); err != nil {
		f.Close()
		return nil, nil, err
	}
	f.Close()

	d, err := OpenDsonFromFile(f.Name())
	if err != nil {
		return nil, nil, err
	}
	return d.Root(), d, nil
}

// DownloadFromStreamToDestination is DownloadFromFDToDestination's
// io.Reader counterpart, for sources that aren't a raw file descriptor.
func DownloadFromStreamToDestination(r io.Reader, fc *FileController) (entry Entry, dest *DsonFromFile, err error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, err
	}
	hdr := GetHeader(header)
	if !hdr.IsValid() {
		return nil, nil, fmt.Errorf("dson: invalid header read from stream")
	}

	if int(hdr.DataSize) < FileBackedThreshold {
		body := make([]byte, hdr.DataSize)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, err
		}
		e, rest, err := DecodeEntry(append(header, body...))
		if err != nil {
			return nil, nil, err
		}
		if len(rest) != 0 {
			return nil, nil, fmt.Errorf("dson: unexpected trailing bytes")
		}
		return e, nil, nil
	}

	f, err := fc.Create("dson-stream-*.dson")
	if err != nil {
		return nil, nil, err
	}
	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, nil, err
	}
	if _, err := io.CopyN(f, r, int64(hdr.DataSize)); err != nil {
		f.Close()
		return nil, nil, err
	}
	f.Close()

	d, err := OpenDsonFromFile(f.Name())
	if err != nil {
		return nil, nil, err
	}
	return d.Root(), d, nil
}

// copyFromFDInChunks copies exactly n bytes from fd to w, reusing
// readFromFD's EAGAIN/EWOULDBLOCK retry behavior so a non-blocking fd
// doesn't surface spurious short reads as errors.
func copyFromFDInChunks(w io.Writer, fd int, n int64) error {
	buf := make([]byte, 64*1024)
	for n > 0 {
		chunk := buf
		if int64(len(chunk)) > n {
			chunk = chunk[:n]
		}
		read, err := readFromFD(fd, chunk)
		if err != nil {
			return err
		}
		if read == 0 {
			continue
		}
		if _, err := w.Write(chunk[:read]); err != nil {
			return err
		}
		n -= int64(read)
	}
	return nil
}
