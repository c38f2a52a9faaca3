package portalclient

import (
	"sort"
	"sync"
)

// instanceCache memoizes one Instance per service name.
type instanceCache struct {
	mu        sync.Mutex
	instances map[ServiceName]*Instance
}

func newInstanceCache() *instanceCache {
	return &instanceCache{
		instances: make(map[ServiceName]*Instance),
	}
}

// getOrCreate returns the cached instance for name or builds it with create.
// create runs inside the critical section, so a caller never observes a
// partially built instance. The bool reports whether the instance was built.
func (c *instanceCache) getOrCreate(name ServiceName, create func() (*Instance, error)) (*Instance, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if inst, ok := c.instances[name]; ok {
		return inst, false, nil
	}

	inst, err := create()
	if err != nil {
		return nil, false, err
	}
	c.instances[name] = inst
	return inst, true, nil
}

// each calls fn for every cached instance while holding the cache lock.
func (c *instanceCache) each(fn func(*Instance)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, inst := range c.instances {
		fn(inst)
	}
}

func (c *instanceCache) names() []ServiceName {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]ServiceName, 0, len(c.instances))
	for name := range c.instances {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (c *instanceCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.instances)
}
