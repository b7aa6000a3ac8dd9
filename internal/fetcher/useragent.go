package fetcher

import (
	"math/rand"
	"sync"
)

// uaRotator hands out browser user-agent strings, rotating sequentially for
// the headless contexts and randomly for the static fallback client.
type uaRotator struct {
	mu         sync.Mutex
	userAgents []string
	index      int
}

func newUARotator() *uaRotator {
	return &uaRotator{
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
	}
}

// Next returns the next user agent in rotation.
func (r *uaRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ua := r.userAgents[r.index]
	r.index = (r.index + 1) % len(r.userAgents)
	return ua
}

// Random returns a random user agent string.
func (r *uaRotator) Random() string {
	return r.userAgents[rand.Intn(len(r.userAgents))]
}
