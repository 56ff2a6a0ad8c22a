package indexer

import "context"

// IndexLock keeps index runs exclusive. The zero value is not usable; use NewIndexLock.
type IndexLock struct {
	ch chan struct{}
}

// NewIndexLock returns an unlocked lock.
func NewIndexLock() *IndexLock {
	return &IndexLock{ch: make(chan struct{}, 1)}
}

// TryAcquire takes the lock if it is free and reports whether it did.
func (l *IndexLock) TryAcquire() bool {
	select {
	case l.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Acquire waits for the lock or for ctx to end.
func (l *IndexLock) Acquire(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the lock. Must only be called by the holder.
func (l *IndexLock) Release() {
	<-l.ch
}

// Held reports whether the lock is currently taken.
func (l *IndexLock) Held() bool {
	return len(l.ch) == 1
}
