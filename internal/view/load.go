// Package view holds the page state for the course overview, the course header
// and the module detail page. A view is mounted, polled through Snapshot and
// finally unmounted; nothing it fetched outlives it.
package view

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound    = errors.New("view not found")
	ErrWrongKind   = errors.New("action not supported by this view")
	ErrUnmounted   = errors.New("view unmounted")
	ErrNotReady    = errors.New("view still loading")
	ErrUnknownItem = errors.New("unknown item")
)

type LoadState string

const (
	Loading LoadState = "loading"
	Ready   LoadState = "ready"
	Failed  LoadState = "failed"
)

type Load[T any] struct {
	State LoadState `json:"state"`
	Data  T         `json:"data"`
	Error string    `json:"error,omitempty"`
}

func loading[T any]() Load[T] {
	return Load[T]{State: Loading}
}

func ready[T any](data T) Load[T] {
	return Load[T]{State: Ready, Data: data}
}

// failed keeps a fallback value so degraded sections still render.
func failed[T any](fallback T, err error) Load[T] {
	return Load[T]{State: Failed, Data: fallback, Error: err.Error()}
}

// lifecycle is embedded in every view. Writes go through update, which turns
// into a no-op once the view is unmounted.
type lifecycle struct {
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	mounted   bool
	unmounted bool
	tasks     sync.WaitGroup
	settled   chan struct{}
}

func (l *lifecycle) init() {
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.settled = make(chan struct{})
}

// start runs the initial fetches. It returns false when the view was already
// mounted or has been unmounted.
func (l *lifecycle) start(fetches ...func(ctx context.Context)) bool {
	l.mu.Lock()
	if l.mounted || l.unmounted {
		l.mu.Unlock()
		return false
	}
	l.mounted = true
	l.mu.Unlock()

	for _, fetch := range fetches {
		l.tasks.Add(1)
		go func() {
			defer l.tasks.Done()
			fetch(l.ctx)
		}()
	}

	go func() {
		l.tasks.Wait()
		close(l.settled)
	}()

	return true
}

func (l *lifecycle) update(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.unmounted {
		return false
	}
	fn()
	return true
}

func (l *lifecycle) read(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

func (l *lifecycle) Settled() <-chan struct{} {
	return l.settled
}

// Unmount cancels in-flight fetches and freezes the state. Results arriving
// afterwards are discarded.
func (l *lifecycle) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.unmounted {
		return
	}
	l.unmounted = true
	l.cancel()

	if !l.mounted {
		l.mounted = true
		close(l.settled)
	}
}

func (l *lifecycle) Unmounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unmounted
}
