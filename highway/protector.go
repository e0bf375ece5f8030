package highway

import "sync/atomic"

// SelfProtector is a first-class weak-liveness handle applications can
// attach to a Task so the Task is silently skipped once whatever object it
// closes over has gone away, instead of running against dangling state.
// Grounded in the original's self-shared "protector" objects
// (original_source examples/highways/simple_with_protector).
type SelfProtector struct {
	alive atomic.Bool
}

// NewSelfProtector returns a SelfProtector that locks successfully until
// Release is called.
func NewSelfProtector() *SelfProtector {
	p := &SelfProtector{}
	p.alive.Store(true)
	return p
}

// Lock implements Protector.
func (p *SelfProtector) Lock() bool {
	return p.alive.Load()
}

// Release permanently disables the protector; every Task guarded by it
// will be skipped from this point on.
func (p *SelfProtector) Release() {
	p.alive.Store(false)
}
