package dson

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// writeToFD writes buf to fd once, returning the number of bytes
// actually written. EAGAIN/EWOULDBLOCK is reported as zero bytes rather
// than an error, so callers retry instead of failing — the Go analogue
// of tools/posix/fd_write_read.h's write_to_fd, for non-blocking fds.
func writeToFD(fd int, buf []byte) (int, error) {
	n, err := unix.Write(fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// readFromFD reads into buf from fd once, the Go analogue of
// tools/posix/fd_write_read.h's read_from_fd.
func readFromFD(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func writeFullToFD(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := writeToFD(fd, buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

func readFullFromFD(fd int, buf []byte) error {
	for len(buf) > 0 {
		n, err := readFromFD(fd, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		buf = buf[n:]
	}
	return nil
}

// UploadToFD writes obj's full encoded form (header and payload) to fd,
// retrying on EAGAIN/EWOULDBLOCK until every byte lands. It blocks the
// calling goroutine; callers on a highway should dispatch it via
// highway.Task rather than calling it from the worker loop directly.
// Grounded in uploader_to_fd.h.
func UploadToFD(fd int, obj Entry) error {
	return writeFullToFD(fd, obj.encode(make([]byte, 0, obj.AllSize())))
}

// DownloadFromFD reads one complete header-prefixed entry from fd,
// retrying reads on EAGAIN/EWOULDBLOCK, grounded in
// downloader_from_fd.h's load_header/load_body pair.
func DownloadFromFD(fd int) (Entry, error) {
	header := make([]byte, HeaderSize)
	if err := readFullFromFD(fd, header); err != nil {
		return nil, err
	}
	hdr := GetHeader(header)
	if !hdr.IsValid() {
		return nil, fmt.Errorf("dson: invalid header read from fd")
	}
	body := make([]byte, hdr.DataSize)
	if err := readFullFromFD(fd, body); err != nil {
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
