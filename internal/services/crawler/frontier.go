package crawler

import (
	"sync"

	"github.com/ternarybob/venari/internal/common"
)

// Frontier is the breadth-first URL queue for one crawl session. URLs are
// deduplicated on their normalized form and the queue is capped so link
// explosions on large sites stay bounded.
type Frontier struct {
	mu    sync.Mutex
	queue []string
	seen  map[string]bool
	limit int
}

// NewFrontier creates a frontier with the given queue cap
func NewFrontier(limit int) *Frontier {
	if limit <= 0 {
		limit = 10000
	}
	return &Frontier{
		seen:  make(map[string]bool),
		limit: limit,
	}
}

// Push enqueues a URL if it has not been seen and the queue has room.
// Returns true when the URL was accepted.
func (f *Frontier) Push(rawURL string) bool {
	normalized := common.NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[normalized] {
		return false
	}
	if len(f.queue) >= f.limit {
		return false
	}
	f.seen[normalized] = true
	f.queue = append(f.queue, normalized)
	return true
}

// Pop dequeues up to n URLs in FIFO order
func (f *Frontier) Pop(n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n > len(f.queue) {
		n = len(f.queue)
	}
	if n == 0 {
		return nil
	}
	batch := make([]string, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]
	return batch
}

// Len returns the number of queued URLs
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// SeenCount returns how many distinct URLs have been discovered
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
