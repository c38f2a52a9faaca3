package portalclient

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
)

func TestInstanceCacheGetOrCreate(t *testing.T) {
	cache := newInstanceCache()
	var builds int32
	create := func() (*Instance, error) {
		atomic.AddInt32(&builds, 1)
		return newInstance(ServiceUsers, "https://users.example.com", DefaultTimeout, nil, http.Header{}), nil
	}

	var wg sync.WaitGroup
	instances := make([]*Instance, 20)
	for i := range instances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inst, _, err := cache.getOrCreate(ServiceUsers, create)
			if err != nil {
				t.Errorf("getOrCreate returned error: %v", err)
			}
			instances[i] = inst
		}(i)
	}
	wg.Wait()

	if builds != 1 {
		t.Errorf("Expected 1 build, got %d", builds)
	}
	for _, inst := range instances {
		if inst != instances[0] {
			t.Fatal("Expected every caller to get the same instance")
		}
	}
	if cache.len() != 1 {
		t.Errorf("Expected 1 cached instance, got %d", cache.len())
	}
}

func TestInstanceCacheCreateError(t *testing.T) {
	cache := newInstanceCache()
	boom := errors.New("boom")

	_, created, err := cache.getOrCreate("bad", func() (*Instance, error) { return nil, boom })
	if !errors.Is(err, boom) || created {
		t.Errorf("Expected boom and created=false, got %v, %v", err, created)
	}
	if cache.len() != 0 {
		t.Error("Expected failed build not to be cached")
	}
}

func TestPipelineApplyToIdempotent(t *testing.T) {
	p := NewPipeline()
	p.AppendRequest(HeaderInterceptor("A", "1"))
	p.AppendResponse(ResponseInterceptor{})

	inst := newInstance(ServiceUsers, "https://users.example.com", DefaultTimeout, nil, http.Header{})
	p.ApplyTo(inst)
	p.ApplyTo(inst)
	if req, resp := inst.Attached(); req != 1 || resp != 1 {
		t.Errorf("Expected 1/1 after repeated ApplyTo, got %d/%d", req, resp)
	}

	p.AppendRequest(HeaderInterceptor("B", "2"))
	p.ApplyTo(inst)
	if req, resp := inst.Attached(); req != 2 || resp != 1 {
		t.Errorf("Expected only the missing suffix to be attached, got %d/%d", req, resp)
	}

	reqStages, _ := inst.interceptors()
	r, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	for _, stage := range reqStages {
		r, _ = stage(r)
	}
	if r.Header.Get("A") != "1" || r.Header.Get("B") != "2" {
		t.Errorf("Expected stages in order, got %v", r.Header)
	}
}

func TestInstanceSnapshotIsStable(t *testing.T) {
	p := NewPipeline()
	inst := newInstance(ServiceUsers, "https://users.example.com", DefaultTimeout, nil, http.Header{})
	p.AppendRequest(HeaderInterceptor("A", "1"))
	p.ApplyTo(inst)

	snapshot, _ := inst.interceptors()
	p.AppendRequest(HeaderInterceptor("B", "2"))
	p.ApplyTo(inst)

	if len(snapshot) != 1 {
		t.Errorf("Expected an in-flight snapshot to keep its length, got %d", len(snapshot))
	}
}
