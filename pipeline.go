package portalclient

import "sync"

// Pipeline is the ordered, append-only list of interceptor stages shared by
// every instance of a Client.
type Pipeline struct {
	mu       sync.RWMutex
	request  []RequestInterceptor
	response []ResponseInterceptor
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AppendRequest adds a request stage at the end of the pipeline.
func (p *Pipeline) AppendRequest(fn RequestInterceptor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.request = append(p.request, fn)
}

// AppendResponse adds a response stage at the end of the pipeline.
func (p *Pipeline) AppendResponse(ri ResponseInterceptor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.response = append(p.response, ri)
}

// Len returns the number of request and response stages.
func (p *Pipeline) Len() (request, response int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.request), len(p.response)
}

// ApplyTo walks the pipeline against inst, attaching every stage inst does not
// have yet, in order. Stages are never removed, so an instance that has n
// stages attached has exactly the first n. Calling ApplyTo repeatedly is safe.
func (p *Pipeline) ApplyTo(inst *Instance) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if n := len(inst.request); n < len(p.request) {
		inst.request = append(inst.request, p.request[n:]...)
	}
	if n := len(inst.response); n < len(p.response) {
		inst.response = append(inst.response, p.response[n:]...)
	}
}
