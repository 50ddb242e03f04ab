// Package memstore provides in-memory implementations of the backend
// interfaces. They follow the rules the real stores enforce (schema changes
// need a disabled table, unknown families are rejected, renames need an
// existing parent) and support fault injection for tests.
package memstore

import (
	"fmt"
	"sync"
)

// faults holds one-shot errors keyed by operation name.
type faults struct {
	mu   sync.Mutex
	next map[string][]error
}

// FailNext makes the next call of op return err. Calls queue up.
func (f *faults) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next == nil {
		f.next = map[string][]error{}
	}
	f.next[op] = append(f.next[op], err)
}

func (f *faults) take(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := f.next[op]
	if len(q) == 0 {
		return nil
	}
	f.next[op] = q[1:]
	return q[0]
}

// counter tracks handles that must be released.
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) dec() {
	c.mu.Lock()
	c.n--
	c.mu.Unlock()
}

func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func errorf(kind, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", kind, fmt.Sprintf(format, args...))
}
