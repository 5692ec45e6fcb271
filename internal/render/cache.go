package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxPools bounds the number of option sets kept. Every terminal resize
// produces a new width, so old pools are dropped once the bound is hit.
const maxPools = 16

// rendererPool hands out glamour renderers per option set.
// glamour.TermRenderer must not be shared between concurrent Render calls,
// so each caller borrows one and returns it.
type rendererPool struct {
	mu    sync.RWMutex
	pools map[string]*sync.Pool
}

var globalPool = &rendererPool{
	pools: make(map[string]*sync.Pool),
}

func cacheKey(opts Options) string {
	return fmt.Sprintf("%s:%d:%t", opts.Style, opts.Width, opts.EnableEmoji)
}

// getPool returns the pool for opts, creating it on first use
func (p *rendererPool) getPool(opts Options) *sync.Pool {
	key := cacheKey(opts)

	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[key]; ok {
		return pool
	}
	if len(p.pools) >= maxPools {
		p.pools = make(map[string]*sync.Pool)
	}

	pool = &sync.Pool{
		New: func() interface{} {
			r, err := createRenderer(opts)
			if err != nil {
				return nil
			}
			return r
		},
	}
	p.pools[key] = pool
	return pool
}

// get borrows a renderer for opts
func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	r := p.getPool(opts).Get()
	if r == nil {
		// New failed; surface the construction error
		return createRenderer(opts)
	}
	return r.(*glamour.TermRenderer), nil
}

// put returns a borrowed renderer
func (p *rendererPool) put(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	p.getPool(opts).Put(r)
}

func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithPreservedNewLines(),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every pool
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.pools = make(map[string]*sync.Pool)
	globalPool.mu.Unlock()
}

// CacheSize returns the number of option sets currently pooled
func CacheSize() int {
	globalPool.mu.RLock()
	defer globalPool.mu.RUnlock()
	return len(globalPool.pools)
}
