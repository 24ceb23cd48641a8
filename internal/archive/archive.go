// Package archive implements a versioned accumulator: a value that is only
// ever changed by increments, together with cheap snapshots (versions) of
// its timeline from which the change up to now can be computed later.
//
// Every increment appends a commit to a chain. A commit remembers the delta
// that moved the value from it to its successor, and the newest commit (the
// head) represents "now". Asking how much the value changed since a version
// walks the chain from that version's commit to the head and compresses the
// path, so repeated queries from the same or any visited commit are O(1).
//
// The package provides:
// - Archive, the owner of the commit chain
// - Version, a snapshot handle that fails explicitly once invalidated
// - Combine functions for numbers, vectors and strings
package archive

import (
	"fmt"
	"weak"
)

// edgeKind tags a commit as either the head or linked to a later commit.
type edgeKind uint8

const (
	edgeHead edgeKind = iota
	edgeLinked
)

// commit is a weighted edge of the chain. For a linked commit, delta is the
// change from this commit to the commit at index to.
type commit[V any] struct {
	kind  edgeKind
	to    int
	delta V
}

// Stats reports bookkeeping counters of an Archive.
type Stats struct {
	Commits    int    // Commits in the live chain
	Generation uint64 // Bumped on every Reset and ClearHistory
	Walked     uint64 // Chain edges walked by diff queries since construction
}

// Archive tracks a value of type V that is updated by increments.
//
// An Archive is not safe for concurrent use. Diff queries rewrite the chain,
// so even read-only looking calls (Value, Version.Diff) must be serialized
// by the caller.
type Archive[V any] struct {
	add        func(earlier, later V) V
	commits    []commit[V]
	origin     int
	head       int
	generation uint64
	walked     uint64
	scratch    []int
	self       weak.Pointer[Archive[V]]
}

// New creates an archive whose current value is initial. add combines two
// consecutive deltas into one and must be associative; the zero value of V
// must be its identity. A nil add panics.
//
// For reference types such as slices, add must return a value that shares
// no memory with its arguments. The archive copies every delta it stores
// and every value it returns through add(zero, x), so callers may mutate
// both freely.
func New[V any](initial V, add func(earlier, later V) V) *Archive[V] {
	if add == nil {
		panic("archive: nil combine function")
	}
	a := &Archive[V]{add: add}
	a.self = weak.Make(a)
	a.Reset(initial)
	return a
}

// NewNumeric creates an archive over a built-in numeric type using +.
func NewNumeric[N Number](initial N) *Archive[N] {
	return New(initial, Add[N])
}

// Increment applies delta to the current value and returns a version for
// the new state.
func (a *Archive[V]) Increment(delta V) Version[V] {
	old := a.head
	a.head = a.pushHead()
	a.commits[old] = commit[V]{kind: edgeLinked, to: a.head, delta: a.detach(delta)}
	return a.version(a.head)
}

// Value returns the current value: the initial value of the last reset
// combined with every increment since.
func (a *Archive[V]) Value() V {
	return a.distance(a.origin)
}

// Current returns a version for the present state.
func (a *Archive[V]) Current() Version[V] {
	return a.version(a.head)
}

// ClearHistory discards every commit while keeping the current value.
// All versions issued so far become invalid.
func (a *Archive[V]) ClearHistory() Version[V] {
	return a.Reset(a.Value())
}

// Reset discards every commit and sets the current value to initial.
// All versions issued so far become invalid.
func (a *Archive[V]) Reset(initial V) Version[V] {
	clear(a.commits)
	a.commits = a.commits[:0]
	a.scratch = nil
	a.generation++

	a.origin = a.pushHead()
	a.head = a.origin
	return a.Increment(initial)
}

// Stats returns the archive's counters.
func (a *Archive[V]) Stats() Stats {
	return Stats{
		Commits:    len(a.commits),
		Generation: a.generation,
		Walked:     a.walked,
	}
}

// String implements fmt.Stringer.
func (a *Archive[V]) String() string {
	return fmt.Sprintf("archive(gen=%d, commits=%d)", a.generation, len(a.commits))
}

func (a *Archive[V]) pushHead() int {
	a.commits = append(a.commits, commit[V]{kind: edgeHead})
	return len(a.commits) - 1
}

func (a *Archive[V]) version(idx int) Version[V] {
	return Version[V]{ref: a.self, index: idx, generation: a.generation}
}

// distance returns the accumulated delta from commit idx to the head.
// Every commit on the way is rewritten to link directly to the head with
// its cumulative delta.
func (a *Archive[V]) distance(idx int) V {
	if a.commits[idx].kind == edgeHead {
		var zero V
		return zero
	}

	// First pass: collect the path. The last entry links to the head.
	path := a.scratch[:0]
	for i := idx; a.commits[i].kind == edgeLinked; i = a.commits[i].to {
		path = append(path, i)
	}
	a.walked += uint64(len(path))

	// Second pass: fold deltas back to front, combining in timeline order.
	acc := a.commits[path[len(path)-1]].delta
	for k := len(path) - 2; k >= 0; k-- {
		c := &a.commits[path[k]]
		acc = a.add(c.delta, acc)
		c.delta = acc
		c.to = a.head
	}

	a.scratch = path[:0]
	return a.detach(acc)
}

// detach returns a copy of x that shares no memory with the chain.
func (a *Archive[V]) detach(x V) V {
	var zero V
	return a.add(zero, x)
}
