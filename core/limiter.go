package core

import "context"

// Limiter bounds the number of reasoning engine calls in flight at once
// across an orchestration tree. A max of 0 means unlimited.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a limiter with the given number of slots.
func NewLimiter(max int) *Limiter {
	l := &Limiter{}
	if max > 0 {
		l.slots = make(chan struct{}, max)
	}
	return l
}

// Acquire blocks until a slot is free or the context is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.slots == nil {
		return nil
	}
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (l *Limiter) Release() {
	if l.slots == nil {
		return
	}
	<-l.slots
}
