// Package chflow provides context-aware helpers for sending to and receiving
// from Go channels, so blocking channel operations always respect
// cancellation and deadlines.
package chflow

import "context"

// Receive waits for a value from ch or for the context to be canceled. It
// returns the value (zero value on cancellation) and whether the receive
// succeeded.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Send delivers data to ch unless the context is canceled first. It reports
// whether the send happened.
func Send[T any](ctx context.Context, ch chan<- T, data T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- data:
		return true
	}
}
