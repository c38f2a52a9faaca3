// Package singleflight coalesces concurrent calls that share a key.
package singleflight

import "sync"

// Group runs at most one call per key at a time. Callers that arrive while a
// call is in flight wait for it and receive its result.
type Group[T any] struct {
	mu sync.Mutex
	m  map[string]*call[T]
}

type call[T any] struct {
	wg  sync.WaitGroup
	val T
	err error
}

// Do executes fn for key unless a call for key is already in flight, in which
// case it waits for that call. shared reports whether the result came from
// another caller's execution. The key is released once fn returns, so a call
// arriving afterwards runs fn again.
func (g *Group[T]) Do(key string, fn func() (T, error)) (val T, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[string]*call[T])
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call[T]{}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
	c.wg.Done()

	return c.val, c.err, false
}
