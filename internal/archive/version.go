package archive

import (
	"errors"
	"fmt"
	"weak"
)

var (
	// ErrInvalidVersion is returned for a zero Version. Every other
	// invalid-version error wraps it.
	ErrInvalidVersion = errors.New("archive: invalid version")

	// ErrStaleVersion is returned for a Version whose history was
	// discarded by Reset or ClearHistory.
	ErrStaleVersion = fmt.Errorf("%w: history was discarded", ErrInvalidVersion)

	// ErrArchiveGone is returned for a Version whose archive no longer exists.
	ErrArchiveGone = fmt.Errorf("%w: archive no longer exists", ErrInvalidVersion)
)

// Version is a snapshot of an Archive's timeline. The zero Version is
// invalid. A Version does not keep its archive alive.
type Version[V any] struct {
	ref        weak.Pointer[Archive[V]]
	index      int
	generation uint64
}

// Valid reports whether the version can still be used to compute a diff.
func (v Version[V]) Valid() bool {
	_, err := v.resolve()
	return err == nil
}

// Diff returns how much the archive's value has changed since v was taken.
func (v Version[V]) Diff() (V, error) {
	a, err := v.resolve()
	if err != nil {
		var zero V
		return zero, err
	}
	return a.distance(v.index), nil
}

// String implements fmt.Stringer.
func (v Version[V]) String() string {
	if v.generation == 0 {
		return "version(invalid)"
	}
	return fmt.Sprintf("version(%d.%d)", v.generation, v.index)
}

func (v Version[V]) resolve() (*Archive[V], error) {
	if v.generation == 0 {
		return nil, ErrInvalidVersion
	}
	a := v.ref.Value()
	if a == nil {
		return nil, ErrArchiveGone
	}
	if v.generation != a.generation || v.index >= len(a.commits) {
		return nil, ErrStaleVersion
	}
	return a, nil
}

// DiffToCurrent returns how much the value of old's archive has changed
// from the moment old was taken until now.
func DiffToCurrent[V any](old Version[V]) (V, error) {
	return old.Diff()
}
