package httpclient

import "math/rand/v2"

// UserAgentPool hands out a random User-Agent per request
type UserAgentPool struct {
	agents   []string
	fallback string
}

// NewUserAgentPool creates a pool; fallback is used when agents is empty
func NewUserAgentPool(agents []string, fallback string) *UserAgentPool {
	pool := make([]string, 0, len(agents))
	for _, a := range agents {
		if a != "" {
			pool = append(pool, a)
		}
	}
	return &UserAgentPool{agents: pool, fallback: fallback}
}

// Pick returns a random agent from the pool
func (p *UserAgentPool) Pick() string {
	if len(p.agents) == 0 {
		return p.fallback
	}
	return p.agents[rand.IntN(len(p.agents))]
}
