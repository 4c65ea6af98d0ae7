package chat

import (
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// modelPool hands out chat model handles for the duration of one
// conversation invocation. Handles are constructed lazily and recycled
// on release, so concurrent invocations never share a handle and idle
// pipelines hold no handles at all.
type modelPool struct {
	mu       sync.Mutex
	free     []llms.Model
	newModel func() (llms.Model, error)
}

func newModelPool(newModel func() (llms.Model, error)) *modelPool {
	return &modelPool{newModel: newModel}
}

// acquire returns a free handle, constructing one when none is available.
func (p *modelPool) acquire() (llms.Model, error) {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		model := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return model, nil
	}
	p.mu.Unlock()

	return p.newModel()
}

// release returns a handle to the free list.
func (p *modelPool) release(model llms.Model) {
	if model == nil {
		return
	}
	p.mu.Lock()
	p.free = append(p.free, model)
	p.mu.Unlock()
}
