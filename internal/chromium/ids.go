package chromium

import (
	"sync"

	"github.com/chromedp/cdproto/target"
)

// idMap hands out stable integer tab ids for CDP target ids. Ids are never
// reused within a process.
type idMap struct {
	mu       sync.Mutex
	next     int
	byTarget map[target.ID]int
	byInt    map[int]target.ID
}

func newIDMap() *idMap {
	return &idMap{
		next:     1,
		byTarget: make(map[target.ID]int),
		byInt:    make(map[int]target.ID),
	}
}

// intID returns the id for tid, assigning one on first sight.
func (m *idMap) intID(tid target.ID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byTarget[tid]; ok {
		return id
	}
	id := m.next
	m.next++
	m.byTarget[tid] = id
	m.byInt[id] = tid
	return id
}

func (m *idMap) lookup(tid target.ID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byTarget[tid]
	return id, ok
}

func (m *idMap) targetID(id int) (target.ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tid, ok := m.byInt[id]
	return tid, ok
}

func (m *idMap) forget(tid target.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byTarget[tid]; ok {
		delete(m.byInt, id)
		delete(m.byTarget, tid)
	}
}
