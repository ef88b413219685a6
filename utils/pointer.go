// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package utils

// Pointer returns a pointer to a copy of val, handy for optional
// fields such as a model's active time ceiling.
// Usage:
//
//	ptr := utils.Pointer(timeval.MustNew(1, timeval.Hour))
func Pointer[T any](val T) *T {
	return &val
}

// Dereference returns the value ptr points to, or the zero value of T
// when ptr is nil.
// Usage:
//
//	active := utils.Dereference(model.MaxActiveTime())
func Dereference[T any](ptr *T) T {
	var val T
	if ptr != nil {
		val = *ptr
	}
	return val
}
