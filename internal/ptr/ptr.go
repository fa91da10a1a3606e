// Package ptr contains helpers for uniform handling of pointers.
package ptr

// Ref returns a pointer to the given value.
func Ref[T any](v T) *T {
	return &v
}

// Deref returns the value pointed to by p, or the zero value of T if p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
