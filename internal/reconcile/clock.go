package reconcile

import "sync/atomic"

// Clock hands out strictly increasing fetch sequence numbers.
// The first call to Next returns 1, so 0 always means "nothing applied yet".
type Clock struct {
	seq atomic.Uint64
}

func (c *Clock) Next() uint64 {
	return c.seq.Add(1)
}

func (c *Clock) Current() uint64 {
	return c.seq.Load()
}
