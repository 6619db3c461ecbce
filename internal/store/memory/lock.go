package memory

import (
	"context"

	"golang.org/x/sync/semaphore"
)

const writerWeight = 1 << 30

// rwLock is a shared/exclusive lock whose acquisition gives up when the
// context is done. Readers take one unit, writers take all of them. Waiters
// are served in FIFO order, so a queued writer holds back later readers.
type rwLock struct {
	sem *semaphore.Weighted
}

func newRWLock() *rwLock {
	return &rwLock{sem: semaphore.NewWeighted(writerWeight)}
}

func (l *rwLock) RLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.sem.Acquire(ctx, 1)
}

func (l *rwLock) RUnlock() {
	l.sem.Release(1)
}

func (l *rwLock) Lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.sem.Acquire(ctx, writerWeight)
}

func (l *rwLock) Unlock() {
	l.sem.Release(writerWeight)
}
