// Package fetch implements the "fetch once per mount" primitive used by the
// console views: a Hook issues exactly one request when it is mounted or its
// URL changes and exposes the outcome as {Value, Err}.
//
// Each request is stamped with a token. Mounting a new URL or unmounting
// invalidates older tokens, and results carrying a stale token are dropped.
// There is no retry, no cache and no deduplication across hooks.
package fetch

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by Load when the request it waited for was
// replaced by a newer mount or by Unmount before it settled.
var ErrSuperseded = errors.New("request superseded")

// Getter performs the actual read.
type Getter[T any] func(ctx context.Context, url string) (T, error)

// State is the observable outcome. Before the request settles Resolved is
// false and both Value and Err are zero; afterwards exactly one is set.
type State[T any] struct {
	Value    T
	Err      error
	Resolved bool
}

type Hook[T any] struct {
	get Getter[T]

	mu      sync.Mutex
	mounted bool
	url     string
	token   uint64
	state   State[T]
	done    chan struct{}
}

func New[T any](get Getter[T]) *Hook[T] {
	return &Hook[T]{get: get}
}

// Mount starts a request for url unless the hook is already mounted on the
// same url. The returned channel is closed once that request settles,
// whether its result was kept or dropped.
func (h *Hook[T]) Mount(ctx context.Context, url string) <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mounted && h.url == url {
		return h.done
	}

	h.mounted = true
	h.url = url
	h.token++
	h.state = State[T]{}
	h.done = make(chan struct{})

	go h.run(ctx, h.token, url, h.done)
	return h.done
}

func (h *Hook[T]) run(ctx context.Context, token uint64, url string, done chan struct{}) {
	defer close(done)

	v, err := h.get(ctx, url)

	h.mu.Lock()
	defer h.mu.Unlock()
	if token != h.token {
		return
	}
	if err != nil {
		h.state = State[T]{Err: err, Resolved: true}
		return
	}
	h.state = State[T]{Value: v, Resolved: true}
}

// Unmount invalidates any in-flight request and forgets the last outcome.
// A later Mount, even with the same url, fetches again.
func (h *Hook[T]) Unmount() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mounted = false
	h.url = ""
	h.token++
	h.state = State[T]{}
}

func (h *Hook[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Load mounts url and waits for the outcome.
func (h *Hook[T]) Load(ctx context.Context, url string) (T, error) {
	var zero T

	select {
	case <-h.Mount(ctx, url):
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	st := h.State()
	if !st.Resolved {
		return zero, ErrSuperseded
	}
	return st.Value, st.Err
}
