package models

// Resolution is the outcome of looking something up: either a value or the
// reason it could not be found.
type Resolution[T any] struct {
	value  T
	reason string
	ok     bool
}

// Resolved wraps a found value
func Resolved[T any](value T) Resolution[T] {
	return Resolution[T]{value: value, ok: true}
}

// Unresolved records why nothing was found
func Unresolved[T any](reason string) Resolution[T] {
	return Resolution[T]{reason: reason}
}

// Value returns the value and whether it was found
func (r Resolution[T]) Value() (T, bool) {
	return r.value, r.ok
}

// Reason is empty for resolved values
func (r Resolution[T]) Reason() string {
	return r.reason
}
