package archive

import (
	"errors"
	"reflect"
	"runtime"
	"testing"
)

func TestNewArchiveValue(t *testing.T) {
	for _, initial := range []int{0, 13, -7} {
		a := NewNumeric(initial)
		if got := a.Value(); got != initial {
			t.Errorf("Value after construction: want %d, got %d", initial, got)
		}
	}
}

func TestNewNilCombinePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New with nil combine should panic")
		}
	}()
	New[int](1, nil)
}

func TestIncrementAccumulates(t *testing.T) {
	a := NewNumeric(int64(10))
	want := int64(10)
	for _, d := range []int64{1, -4, 100, 0, 7} {
		before := a.Value()
		a.Increment(d)
		want += d
		if got := a.Value(); got != before+d {
			t.Errorf("Increment(%d): want %d, got %d", d, before+d, got)
		}
	}
	if got := a.Value(); got != want {
		t.Errorf("Final value: want %d, got %d", want, got)
	}
}

// TestSmokeScenario replays the reference scenario: 13 incremented by
// 3, 4, 7, 9, 4, 5, 7, 94 with a version captured before every increment.
func TestSmokeScenario(t *testing.T) {
	increments := []int{3, 4, 7, 9, 4, 5, 7, 94}
	a := NewNumeric(13)

	versions := []Version[int]{a.Current()}
	values := []int{13}
	for _, d := range increments {
		versions = append(versions, a.Increment(d))
		values = append(values, values[len(values)-1]+d)
	}

	final := values[len(values)-1]
	if final != 146 || a.Value() != 146 {
		t.Fatalf("Final value: want 146, got %d (archive %d)", final, a.Value())
	}

	for i, v := range versions {
		got, err := DiffToCurrent(v)
		if err != nil {
			t.Fatalf("DiffToCurrent(versions[%d]) failed: %v", i, err)
		}
		if want := final - values[i]; got != want {
			t.Errorf("DiffToCurrent(versions[%d]): want %d, got %d", i, want, got)
		}
	}

	if got, _ := versions[0].Diff(); got != 133 {
		t.Errorf("Diff from initial version: want 133, got %d", got)
	}
	if got, _ := versions[len(versions)-2].Diff(); got != 94 {
		t.Errorf("Diff from version before last increment: want 94, got %d", got)
	}
}

func TestDiffInterleavedWithIncrements(t *testing.T) {
	a := NewNumeric(0)
	var versions []Version[int]
	var values []int

	for i := 1; i <= 50; i++ {
		versions = append(versions, a.Current())
		values = append(values, a.Value())
		a.Increment(i)

		// Query a spread of older versions so some paths are compressed
		// while others are not.
		for j := 0; j < len(versions); j += 3 {
			got, err := versions[j].Diff()
			if err != nil {
				t.Fatalf("Diff failed: %v", err)
			}
			if want := a.Value() - values[j]; got != want {
				t.Fatalf("step %d, version %d: want %d, got %d", i, j, want, got)
			}
		}
	}
}

func TestRepeatedDiffIsConstantWork(t *testing.T) {
	a := NewNumeric(0)
	first := a.Current()
	for i := 0; i < 1000; i++ {
		a.Increment(1)
	}

	d1, err := first.Diff()
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	walked := a.Stats().Walked
	if walked < 1000 {
		t.Errorf("First diff should walk the whole chain, walked %d", walked)
	}

	d2, err := first.Diff()
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if d1 != d2 || d1 != 1000 {
		t.Errorf("Repeated diff: want 1000 twice, got %d and %d", d1, d2)
	}
	if step := a.Stats().Walked - walked; step != 1 {
		t.Errorf("Repeated diff should walk one edge, walked %d", step)
	}

	// Value starts from the origin, which precedes first; everything after
	// it is already compressed.
	before := a.Stats().Walked
	if got := a.Value(); got != 1000 {
		t.Errorf("Value: want 1000, got %d", got)
	}
	if step := a.Stats().Walked - before; step > 2 {
		t.Errorf("Value after compression should be cheap, walked %d", step)
	}
}

func TestDiffAtHeadIsZero(t *testing.T) {
	a := NewNumeric(5.5)
	v := a.Increment(2.5)
	got, err := v.Diff()
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if got != 0 {
		t.Errorf("Diff at head: want 0, got %v", got)
	}
	if a.Current() != v {
		t.Error("Current should equal the version returned by the last Increment")
	}
}

func TestReset(t *testing.T) {
	a := NewNumeric(1)
	old := a.Current()
	a.Increment(2)
	stale := a.Increment(3)

	fresh := a.Reset(40)
	if got := a.Value(); got != 40 {
		t.Errorf("Value after Reset: want 40, got %d", got)
	}

	for _, v := range []Version[int]{old, stale} {
		if v.Valid() {
			t.Errorf("%v should be invalid after Reset", v)
		}
		_, err := v.Diff()
		if !errors.Is(err, ErrStaleVersion) || !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("Diff of %v after Reset: want ErrStaleVersion, got %v", v, err)
		}
	}

	a.Increment(2)
	if got, err := fresh.Diff(); err != nil || got != 2 {
		t.Errorf("Diff from fresh version: want 2, got %d (%v)", got, err)
	}
}

func TestClearHistory(t *testing.T) {
	a := NewNumeric(int64(7))
	old := a.Current()
	for i := int64(1); i <= 10; i++ {
		a.Increment(i)
	}
	before := a.Value()

	v := a.ClearHistory()
	if got := a.Value(); got != before {
		t.Errorf("Value after ClearHistory: want %d, got %d", before, got)
	}
	if old.Valid() {
		t.Error("Old version should be invalid after ClearHistory")
	}
	if _, err := old.Diff(); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("Diff of old version: want ErrInvalidVersion, got %v", err)
	}
	if !v.Valid() {
		t.Error("Version returned by ClearHistory should be valid")
	}
	if got, _ := v.Diff(); got != 0 {
		t.Errorf("Diff from cleared version: want 0, got %d", got)
	}
	if s := a.Stats(); s.Commits != 2 {
		t.Errorf("Commits after ClearHistory: want 2, got %d", s.Commits)
	}
}

func TestStaleVersionAfterChainRegrows(t *testing.T) {
	a := NewNumeric(0)
	for i := 0; i < 5; i++ {
		a.Increment(1)
	}
	stale := a.Current()
	a.Reset(0)
	for i := 0; i < 10; i++ {
		a.Increment(1)
	}
	// The index of stale exists again in the new chain; the generation
	// must still reject it.
	if _, err := stale.Diff(); !errors.Is(err, ErrStaleVersion) {
		t.Errorf("want ErrStaleVersion, got %v", err)
	}
}

func TestZeroVersion(t *testing.T) {
	var v Version[int]
	if v.Valid() {
		t.Error("Zero version should not be valid")
	}
	_, err := DiffToCurrent(v)
	if !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("want ErrInvalidVersion, got %v", err)
	}
	if errors.Is(err, ErrStaleVersion) || errors.Is(err, ErrArchiveGone) {
		t.Errorf("Zero version error should be the base error, got %v", err)
	}
	if v.String() != "version(invalid)" {
		t.Errorf("Unexpected String: %s", v.String())
	}
}

//go:noinline
func orphanVersion() Version[int] {
	a := NewNumeric(1)
	a.Increment(2)
	return a.Current()
}

func TestVersionOutlivesArchive(t *testing.T) {
	v := orphanVersion()
	for i := 0; i < 5 && v.Valid(); i++ {
		runtime.GC()
	}
	if _, err := v.Diff(); !errors.Is(err, ErrArchiveGone) {
		t.Errorf("want ErrArchiveGone, got %v", err)
	}
}

func TestVersionsAreArchiveScoped(t *testing.T) {
	a := NewNumeric(0)
	b := NewNumeric(100)
	va := a.Current()
	vb := b.Current()

	a.Increment(1)
	b.Increment(10)
	b.Increment(10)

	if got, _ := va.Diff(); got != 1 {
		t.Errorf("Diff on a: want 1, got %d", got)
	}
	if got, _ := vb.Diff(); got != 20 {
		t.Errorf("Diff on b: want 20, got %d", got)
	}
}

func TestStats(t *testing.T) {
	a := NewNumeric(0)
	s := a.Stats()
	if s.Commits != 2 || s.Generation != 1 {
		t.Errorf("Fresh stats: want 2 commits in generation 1, got %+v", s)
	}
	a.Increment(1)
	a.Increment(1)
	if got := a.Stats().Commits; got != 4 {
		t.Errorf("Commits: want 4, got %d", got)
	}
	a.Reset(3)
	a.ClearHistory()
	if got := a.Stats().Generation; got != 3 {
		t.Errorf("Generation: want 3, got %d", got)
	}
}

func TestVectorArchive(t *testing.T) {
	a := New([]float64{1, 2}, AddVectors[float64])
	start := a.Current()
	a.Increment([]float64{1, 1, 1})
	a.Increment([]float64{0, 2})

	if got, want := a.Value(), []float64{2, 5, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Value: want %v, got %v", want, got)
	}
	got, err := start.Diff()
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if want := []float64{1, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Diff: want %v, got %v", want, got)
	}
}

func TestVectorArchiveDoesNotShareMemory(t *testing.T) {
	a := New([]int{1, 2}, AddVectors[int])

	got := a.Value()
	got[0] = 99
	if want := []int{1, 2}; !reflect.DeepEqual(a.Value(), want) {
		t.Errorf("Value after mutating a returned value: want %v, got %v", want, a.Value())
	}

	v := a.Current()
	delta := []int{5}
	a.Increment(delta)
	delta[0] = 1000

	diff, err := v.Diff()
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if want := []int{5}; !reflect.DeepEqual(diff, want) {
		t.Errorf("Diff after mutating the increment: want %v, got %v", want, diff)
	}

	diff[0] = -1
	again, err := v.Diff()
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if want := []int{5}; !reflect.DeepEqual(again, want) {
		t.Errorf("Diff after mutating a returned diff: want %v, got %v", want, again)
	}
	if want := []int{6, 2}; !reflect.DeepEqual(a.Value(), want) {
		t.Errorf("Value: want %v, got %v", want, a.Value())
	}
}

func TestConcatArchivePreservesOrder(t *testing.T) {
	a := New("a", Concat)
	v := a.Increment("b")
	a.Increment("c")
	a.Increment("d")

	if got := a.Value(); got != "abcd" {
		t.Errorf("Value: want abcd, got %q", got)
	}
	if got, _ := v.Diff(); got != "cd" {
		t.Errorf("Diff: want cd, got %q", got)
	}
}

func TestAddVectors(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []int
		expected []int
	}{
		{"both nil", nil, nil, nil},
		{"nil left", nil, []int{1, 2}, []int{1, 2}},
		{"nil right", []int{3}, nil, []int{3}},
		{"longer right", []int{1}, []int{1, 5}, []int{2, 5}},
		{"longer left", []int{1, 2, 3}, []int{1}, []int{2, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddVectors(tt.a, tt.b)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("AddVectors(%v, %v): want %v, got %v", tt.a, tt.b, tt.expected, got)
			}
		})
	}

	left := []int{1, 2}
	sum := AddVectors(left, []int{1, 1})
	sum[0] = 99
	if left[0] != 1 {
		t.Error("AddVectors result must not alias its arguments")
	}
}
