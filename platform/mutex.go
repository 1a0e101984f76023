package platform

// Mutex is a stand-in for a real mutual-exclusion primitive. Every
// operation is a no-op that reports success, and any value is a valid
// handle.
//
// This is sound only under the single-thread execution model documented in
// the package comment: there is exactly one caller at a time, so there is
// no contention to exclude. An embedding that runs the engine on more than
// one thread must replace this type with a real primitive first.
type Mutex uint32

// Init prepares the mutex. No backing state exists to initialize.
func (m *Mutex) Init() error {
	*m = 0
	return nil
}

// Lock acquires nothing and returns immediately.
func (m *Mutex) Lock() error {
	return nil
}

// Unlock releases nothing.
func (m *Mutex) Unlock() error {
	return nil
}

// Destroy discards the handle.
func (m *Mutex) Destroy() error {
	return nil
}

// Cond is a condition-variable stand-in with the same no-op semantics as
// Mutex. Wait never blocks, which is only correct because no second thread
// exists to signal it.
type Cond uint32

// Init prepares the condition variable.
func (c *Cond) Init() error {
	*c = 0
	return nil
}

// Wait returns immediately.
func (c *Cond) Wait(m *Mutex) error {
	_ = m
	return nil
}

// Signal wakes nobody.
func (c *Cond) Signal() error {
	return nil
}

// Destroy discards the handle.
func (c *Cond) Destroy() error {
	return nil
}
