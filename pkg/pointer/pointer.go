// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer holds generic helpers for optional fields.

Partial updates model "absent" as a nil pointer and "clear" as a pointer to
the zero value. These helpers keep that mapping out of the service code.
*/
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, yielding the zero value for nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback dereferences p, yielding fallback for nil. A PATCH field applies
// as Fallback(input.Field, current).
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// NonZero returns nil for the zero value and a pointer to v otherwise, so an
// empty string stored in a nullable column reads back as NULL.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
