/*package eq is a simple package for telling whether two arrays are equal to
one another.*/
package eq

import (
	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// Ints returns true if two []int arrays are the same and false otherwise.
func Ints(x, y []int) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if x[i] != y[i] { return false }
	}
	return true
}

// Int32s returns true if two []int32 arrays are the same and false otherwise.
func Int32s(x, y []int32) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if x[i] != y[i] { return false }
	}
	return true
}

// Uint32s returns true if two []uint32 arrays are the same and false otherwise.
func Uint32s(x, y []uint32) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if x[i] != y[i] { return false }
	}
	return true
}

// Reals returns true if two real-valued arrays are exactly the same and false
// otherwise.
func Reals[T mathx.Real](x, y []T) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if x[i] != y[i] { return false }
	}
	return true
}

// RealsEps returns true if the two real-valued arrays are within eps of one
// another and false otherwise.
func RealsEps[T mathx.Real](x, y []T, eps T) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if x[i] + eps < y[i] || x[i] - eps > y[i] {
			return false
		}
	}
	return true
}

// RealsRelative returns true if the two real-valued arrays agree to within the
// relative tolerance tol, measured against the mean magnitude of each element
// pair, and false otherwise.
func RealsRelative[T mathx.Real](x, y []T, tol T) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if !mathx.WithinTol(x[i], y[i], tol) { return false }
	}
	return true
}

// Vecs returns true if two three-vector arrays are the same and false
// otherwise.
func Vecs[T mathx.Real](x, y [][3]T) bool {
	if len(x) != len(y) { return false }
	for i := range x {
		if x[i] != y[i] { return false }
	}
	return true
}
