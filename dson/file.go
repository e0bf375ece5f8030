package dson

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DsonFromFile is a file-backed editor over a single Dson record: the
// whole file is mmap'd once and decoded into a live *Object tree that
// Navigate can edit in place, grounded in the original's file-backed
// DsonEditController variant for records too large to comfortably carry
// around as a second in-memory copy.
type DsonFromFile struct {
	f    *os.File
	data []byte // mmap'd view; nil once Close has run
	root *Object
}

// OpenDsonFromFile mmaps the file at path and decodes its contents as a
// single top-level Object.
func OpenDsonFromFile(path string) (*DsonFromFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	d, err := mapAndDecode(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// CreateDsonFromFile creates (or truncates) the file at path, writes
// root's encoded form to it, and opens the result through
// OpenDsonFromFile, so the returned editor's tree is decoded from the
// same bytes any other reader of path would see rather than aliasing
// root directly.
func CreateDsonFromFile(path string, root *Object) (*DsonFromFile, error) {
	if err := os.WriteFile(path, root.Encode(), 0o644); err != nil {
		return nil, err
	}
	return OpenDsonFromFile(path)
}

func mapAndDecode(f *os.File) (*DsonFromFile, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size < HeaderSize {
		return nil, fmt.Errorf("dson: file too small to contain a header")
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	root, err := Decode(data)
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}
	return &DsonFromFile{f: f, data: data, root: root}, nil
}

// Navigate returns an EditController positioned at the editor's root,
// ready to descend into, add to, or remove from nested Objects. Edits
// made through it mutate the same *Object tree Save encodes.
func (d *DsonFromFile) Navigate() *EditController { return NewEditController(d.root) }

// Root returns the editor's decoded root Object.
func (d *DsonFromFile) Root() *Object { return d.root }

// AllSize reports the root Object's current encoded size, reflecting any
// edits made since the file was opened or last saved.
func (d *DsonFromFile) AllSize() int32 { return d.root.AllSize() }

// Save re-encodes the root Object — capturing any edits made through
// Navigate since the file was opened or last saved — and writes it back
// to the backing file.
//
// When the new encoding is exactly the size of the current mapping, it
// is copied in place over the existing mmap: no syscalls beyond the copy
// itself. Otherwise, rewriting in place isn't possible (the mapping's
// length is fixed), so the file is truncated to the new size, the new
// bytes are written, and the mapping is replaced.
//
// This re-encodes the whole root rather than rewriting only the tail
// that changed: a literal tail-only rewrite is only correct when the
// edited entry happens to be the last thing in the file, since anything
// that follows it — later siblings at the same level, or anything at an
// outer level — would otherwise be silently dropped. Root.Encode's cost
// is small next to the mmap/decode work Save already does, so trading a
// small amount of write volume for that correctness is the right
// tradeoff here.
func (d *DsonFromFile) Save() error {
	if d.data == nil {
		return fmt.Errorf("dson: editor is closed")
	}
	encoded := d.root.Encode()

	if len(encoded) == len(d.data) {
		copy(d.data, encoded)
		return nil
	}

	if err := d.f.Truncate(int64(len(encoded))); err != nil {
		return err
	}
	if _, err := d.f.WriteAt(encoded, 0); err != nil {
		return err
	}
	if err := unix.Munmap(d.data); err != nil {
		d.data = nil
		return err
	}
	d.data = nil

	remapped, err := mapAndDecode(d.f)
	if err != nil {
		return err
	}
	d.data = remapped.data
	d.root = remapped.root
	return nil
}

// Close unmaps the file and closes the underlying descriptor. Close is
// safe to call without a prior Save; unsaved edits are discarded.
func (d *DsonFromFile) Close() error {
	if d.data == nil {
		return d.f.Close()
	}
	err := unix.Munmap(d.data)
	d.data = nil
	if cerr := d.f.Close(); err == nil {
		err = cerr
	}
	return err
}
