package dson

import "fmt"

// folderFrame records where EditController descended from, so
// CloseFolder can restore it and report the index the folder was opened
// at.
type folderFrame struct {
	parent *Object
	index  int
}

// EditController navigates a tree of Objects one folder (nested Object)
// at a time, grounded in dson_edit_controller.h /
// dson_edit_controller_printer.h's DsonEditController, whose
// open_folder(index)/close_folder(&outIndex) pair this mirrors exactly.
type EditController struct {
	root    *Object
	current *Object
	stack   []folderFrame
}

// NewEditController starts navigation at the root of root.
func NewEditController(root *Object) *EditController {
	return &EditController{root: root, current: root}
}

// ItemsOnLevel returns the number of entries at the current level,
// mirroring items_on_level().
func (c *EditController) ItemsOnLevel() int { return c.current.Len() }

// At returns the entry at position i of the current level.
func (c *EditController) At(i int) Entry { return c.current.At(i) }

// ObjKey returns the key of the Object currently being browsed.
func (c *EditController) ObjKey() int32 { return c.current.ObjKey() }

// OpenFolder descends into the container entry at position i of the
// current level. It fails if that entry isn't itself a container.
func (c *EditController) OpenFolder(i int) error {
	entry := c.current.At(i)
	obj, ok := entry.(*Object)
	if !ok {
		return fmt.Errorf("dson: entry %d is not a container (type %s)", i, typeName(entry.DataType()))
	}
	c.stack = append(c.stack, folderFrame{parent: c.current, index: i})
	c.current = obj
	return nil
}

// CloseFolder ascends back to the parent of the current level, returning
// the index the folder was opened at. It fails if already at the root.
func (c *EditController) CloseFolder() (int, error) {
	if len(c.stack) == 0 {
		return 0, fmt.Errorf("dson: already at root")
	}
	frame := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.current = frame.parent
	return frame.index, nil
}

// Put appends entry to the current level.
func (c *EditController) Put(entry Entry) { c.current.Put(entry) }

// RemoveAt removes the entry at position i of the current level.
func (c *EditController) RemoveAt(i int) { c.current.RemoveAt(i) }

// Depth reports how many folders deep the controller currently is.
func (c *EditController) Depth() int { return len(c.stack) }

// Reset returns the controller to the root level.
func (c *EditController) Reset() {
	c.current = c.root
	c.stack = c.stack[:0]
}
