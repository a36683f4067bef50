// Package browser drives headless Chrome sessions for page scans. Each page
// visit gets its own tab; exec allocators are pooled and reused across visits.
package browser

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"
)

// allocatorPool recycles chromedp exec allocator contexts so repeated page
// visits do not pay browser startup cost every time.
type allocatorPool struct {
	pool sync.Pool
}

func newAllocatorPool(userAgent string) *allocatorPool {
	p := &allocatorPool{}
	p.pool.New = func() interface{} {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", ""),
			chromedp.Flag("disable-dev-shm-usage", ""),
		)
		if userAgent != "" {
			opts = append(opts, chromedp.UserAgent(userAgent))
		}
		allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
		return allocCtx
	}
	return p
}

func (p *allocatorPool) get() context.Context {
	return p.pool.Get().(context.Context)
}

func (p *allocatorPool) put(ctx context.Context) {
	p.pool.Put(ctx)
}
