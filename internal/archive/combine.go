package archive

// Number is the set of built-in types whose + is a valid combine.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// Add is the combine function of numeric archives.
func Add[N Number](earlier, later N) N {
	return earlier + later
}

// AddVectors sums two vectors element-wise. The shorter one is padded with
// zeros, so a nil vector is the identity. The result never aliases an
// argument.
func AddVectors[N Number](earlier, later []N) []N {
	n := max(len(earlier), len(later))
	if n == 0 {
		return nil
	}
	sum := make([]N, n)
	copy(sum, earlier)
	for i, x := range later {
		sum[i] += x
	}
	return sum
}

// Concat appends later to earlier. It is associative but not commutative;
// archives always combine deltas in timeline order.
func Concat(earlier, later string) string {
	return earlier + later
}
