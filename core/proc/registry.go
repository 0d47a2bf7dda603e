package proc

import (
	"sort"
	"sync"
)

// Registry tracks the pids of children the shell has spawned and not yet seen
// exit. Background children that exit on their own stay registered until
// they're terminated: nothing reaps them.
type Registry struct {
	mu   sync.Mutex
	pids map[int]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pids: make(map[int]struct{})}
}

// Add starts tracking pid.
func (r *Registry) Add(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pids[pid] = struct{}{}
}

// Remove stops tracking pid.
func (r *Registry) Remove(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pids, pid)
}

// Contains reports whether pid is tracked.
func (r *Registry) Contains(pid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.pids[pid]
	return ok
}

// Len returns the number of tracked pids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pids)
}

// PIDs returns the tracked pids in ascending order.
func (r *Registry) PIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, 0, len(r.pids))
	for pid := range r.pids {
		out = append(out, pid)
	}
	sort.Ints(out)
	return out
}

// Clear forgets every pid.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pids = make(map[int]struct{})
}
