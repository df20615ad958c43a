// Package crawler walks a site depth-first and persists the text of
// every page and PDF it reaches.
package crawler

import (
	"strings"
	"sync"
)

// Frontier is the crawl work-list: a LIFO stack of pending URLs plus the
// set of canonical URLs already claimed. It replaces call-stack recursion,
// so traversal depth is bounded only by memory.
type Frontier struct {
	mu       sync.Mutex
	stack    []string
	visited  map[string]bool
	maxPages int
}

// NewFrontier creates an empty frontier that admits at most maxPages
// distinct URLs. A maxPages of zero or less means no limit.
func NewFrontier(maxPages int) *Frontier {
	return &Frontier{
		visited:  make(map[string]bool),
		maxPages: maxPages,
	}
}

// Push adds urls so that urls[0] is popped first. Pushing a page's links
// in this order makes pops follow document order, which reproduces a
// recursive depth-first walk.
func (f *Frontier) Push(urls ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(urls) - 1; i >= 0; i-- {
		f.stack = append(f.stack, urls[i])
	}
}

// Pop removes and returns the most recently pushed URL.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.stack) == 0 {
		return "", false
	}
	last := len(f.stack) - 1
	u := f.stack[last]
	f.stack = f.stack[:last]
	return u, true
}

// Claim canonicalizes rawURL and marks it visited. It reports false, with
// no side effects, when the URL was already claimed or the page cap has
// been reached. The check and the insert happen under one lock.
func (f *Frontier) Claim(rawURL string) (string, bool) {
	key := CanonicalURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited[key] || f.full() {
		return key, false
	}
	f.visited[key] = true
	return key, true
}

// IsVisited reports whether rawURL's canonical form was claimed.
func (f *Frontier) IsVisited(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited[CanonicalURL(rawURL)]
}

// Visited returns the number of claimed URLs.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Len returns the number of pending URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stack)
}

// Full reports whether the page cap has been reached.
func (f *Frontier) Full() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.full()
}

func (f *Frontier) full() bool {
	return f.maxPages > 0 && len(f.visited) >= f.maxPages
}

// CanonicalURL strips the fragment identifier. The URL is not otherwise
// normalized, so two spellings of one resource are distinct keys.
func CanonicalURL(rawURL string) string {
	key, _, _ := strings.Cut(rawURL, "#")
	return key
}
