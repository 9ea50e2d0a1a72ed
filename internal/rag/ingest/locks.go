package ingest

import "sync"

// Coordinator serializes work per document identity and gates whole-index
// operations against it. Ingestion and deletion hold the document's slot
// for their whole transaction; a second upload of the same identity is
// rejected instead of queued, the caller retries after the first run
// finishes. Reset claims the coordinator exclusively, so the no-work-in-
// flight check and the wipe are one atomic step: nothing can acquire a
// slot between them.
type Coordinator struct {
	mu        sync.Mutex
	active    map[string]struct{}
	exclusive bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{active: make(map[string]struct{})}
}

// TryAcquire claims the slot for documentId. Returns false when an
// ingestion already holds it or the coordinator is exclusively held.
func (c *Coordinator) TryAcquire(documentId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exclusive {
		return false
	}
	if _, busy := c.active[documentId]; busy {
		return false
	}
	c.active[documentId] = struct{}{}
	return true
}

func (c *Coordinator) Release(documentId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, documentId)
}

// TryAcquireAll claims the coordinator exclusively. Succeeds only when no
// slot is held; until ReleaseAll every TryAcquire is refused.
func (c *Coordinator) TryAcquireAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exclusive || len(c.active) > 0 {
		return false
	}
	c.exclusive = true
	return true
}

func (c *Coordinator) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exclusive = false
}

// ActiveCount reports how many ingestions are in flight.
func (c *Coordinator) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}
