package dson

// Object is an ordered container of Entry values — a nested record
// inside a Dson tree — grounded in types_map.h's DsonContainer marker
// applied to obj_view.h's IObjView. Keys need not be unique; Get resolves
// duplicates by returning the first match in insertion order (see
// DESIGN.md's Open Questions).
type Object struct {
	key     int32
	entries []Entry
}

// NewObject creates an empty Object stored under key.
func NewObject(key int32) *Object {
	return &Object{key: key}
}

// ObjKey returns the key this Object is stored under in its parent.
func (o *Object) ObjKey() int32 { return o.key }

// DataType always reports TypeContainer for an Object.
func (o *Object) DataType() int32 { return TypeContainer }

// DataSize returns the total encoded size of every entry in o, header
// included per entry.
func (o *Object) DataSize() int32 {
	var size int32
	for _, e := range o.entries {
		size += e.AllSize()
	}
	return size
}

// AllSize returns o's own header size plus DataSize.
func (o *Object) AllSize() int32 { return HeaderSize + o.DataSize() }

func (o *Object) encode(buf []byte) []byte {
	var hdr [HeaderSize]byte
	PutHeader(hdr[:], Header{Key: o.key, DataSize: o.DataSize(), DataType: TypeContainer})
	buf = append(buf, hdr[:]...)
	for _, e := range o.entries {
		buf = e.encode(buf)
	}
	return buf
}

// Encode serializes o, header included, into a freshly allocated buffer.
func (o *Object) Encode() []byte {
	return o.encode(make([]byte, 0, o.AllSize()))
}

// Put appends entry to o. If an entry already exists under the same key,
// both remain reachable by iteration; only Get prefers the earlier one.
func (o *Object) Put(entry Entry) {
	o.entries = append(o.entries, entry)
}

// Get returns the first entry stored under key, in insertion order.
func (o *Object) Get(key int32) (Entry, bool) {
	for _, e := range o.entries {
		if e.ObjKey() == key {
			return e, true
		}
	}
	return nil, false
}

// All returns every entry stored under key, in insertion order.
func (o *Object) All(key int32) []Entry {
	var out []Entry
	for _, e := range o.entries {
		if e.ObjKey() == key {
			out = append(out, e)
		}
	}
	return out
}

// RemoveAt removes the entry at position i, shifting later entries down
// by one.
func (o *Object) RemoveAt(i int) {
	o.entries = append(o.entries[:i], o.entries[i+1:]...)
}

// Len returns the number of entries directly in o, not counting entries
// nested inside any child Object.
func (o *Object) Len() int { return len(o.entries) }

// At returns the entry at position i.
func (o *Object) At(i int) Entry { return o.entries[i] }

// Entries returns every entry in o, in insertion order. The returned
// slice aliases o's own storage and must not be modified.
func (o *Object) Entries() []Entry { return o.entries }
