package broadcast

import "sync"

// Change is one observed mutation of the shared medium.
type Change struct {
	Key     string
	Value   []byte
	Removed bool
}

// Medium is the shared cross-session key-value surface the protocol runs
// over. Writers never read-modify-write a key: every publish uses a fresh
// unique slot, so the medium needs no compare-and-swap.
type Medium interface {
	Set(key string, value []byte) error
	Delete(key string) error
	// Watch registers fn for every subsequent change. The returned cancel
	// func detaches it.
	Watch(fn func(Change)) (cancel func())
}

// MemoryMedium is an in-process Medium shared by every session attached to
// it. Unlike a browser's storage events it notifies the writing session's
// watchers too; the listener's origin filter makes that harmless.
type MemoryMedium struct {
	mu       sync.Mutex
	slots    map[string][]byte
	watchers map[int]func(Change)
	nextID   int
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{
		slots:    make(map[string][]byte),
		watchers: make(map[int]func(Change)),
	}
}

func (m *MemoryMedium) Set(key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.slots[key] = v
	m.mu.Unlock()

	m.dispatch(Change{Key: key, Value: v})
	return nil
}

func (m *MemoryMedium) Delete(key string) error {
	m.mu.Lock()
	_, ok := m.slots[key]
	delete(m.slots, key)
	m.mu.Unlock()

	if ok {
		m.dispatch(Change{Key: key, Removed: true})
	}
	return nil
}

func (m *MemoryMedium) Watch(fn func(Change)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}
}

// Len reports the number of live slots. Published slots self-expire, so a
// quiet medium drains back to zero.
func (m *MemoryMedium) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

func (m *MemoryMedium) dispatch(ch Change) {
	m.mu.Lock()
	fns := make([]func(Change), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}
