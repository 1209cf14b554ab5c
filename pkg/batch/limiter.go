package batch

import "context"

// Limiter is a counting semaphore bounding the number of simultaneously
// in-flight remote operations.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a limiter with the given capacity.
// Capacity values below 1 are raised to 1.
func NewLimiter(capacity int) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or the context is cancelled.
// Every successful Acquire must be paired with exactly one Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	// An already-cancelled context never admits, even when a slot is free.
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot acquired with Acquire.
func (l *Limiter) Release() {
	<-l.slots
}

// Cap returns the limiter capacity.
func (l *Limiter) Cap() int {
	return cap(l.slots)
}

// InFlight returns the number of currently held slots.
func (l *Limiter) InFlight() int {
	return len(l.slots)
}
