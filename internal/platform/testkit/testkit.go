// Package testkit provides testing helpers
package testkit

import "testing"

// MustPanic asserts that fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustNotPanic asserts that fn does not panic
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	fn()
}

// Eventually polls cond up to n times, failing the test if it never holds
func Eventually(t *testing.T, n int, cond func() bool, sleep func()) {
	t.Helper()
	for i := 0; i < n; i++ {
		if cond() {
			return
		}
		if sleep != nil {
			sleep()
		}
	}
	t.Fatalf("condition not met after %d attempts", n)
}
