package highway

import (
	"runtime"
	"strconv"
)

// getGoroutineID parses the calling goroutine's runtime id out of its own
// stack trace header ("goroutine 123 [running]:..."), the same technique
// the teacher's eventloop package uses to tell whether a call arrived on
// its own loop goroutine. There is no supported API for this; it exists
// purely for diagnostics and invariant checks, not for anything on a hot
// path, since runtime.Stack is comparatively expensive.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := string(buf[:n])

	const prefix = "goroutine "
	if len(s) < len(prefix) || s[:len(prefix)] != prefix {
		return 0
	}
	s = s[len(prefix):]

	i := 0
	for i < len(s) && s[i] != ' ' {
		i++
	}
	id, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// GoroutineID returns the calling goroutine's runtime id. It is exported
// so other packages (e.g. channel's OneForMany) can enforce the same
// single-goroutine invariants a Highway enforces on itself via
// CurrentThreadIsWorker, without duplicating the stack-parsing logic.
func GoroutineID() uint64 {
	return getGoroutineID()
}
