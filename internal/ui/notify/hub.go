package notify

import "sync"

// Hub hands out one Center per (region, exclusive) pair. Centers that render
// into the same element share a single Region, and an exclusive Clear also
// drops the messages and timers the other centers hold for it.
type Hub struct {
	mu      sync.Mutex
	open    func(id string) (Region, bool)
	opts    []Option
	regions map[string]*sharedRegion
	centers map[hubKey]*Center
}

type hubKey struct {
	region    string
	exclusive bool
}

// NewHub returns a Hub that creates regions with open and centers with opts.
func NewHub(open func(id string) (Region, bool), opts ...Option) *Hub {
	return &Hub{
		open:    open,
		opts:    opts,
		regions: make(map[string]*sharedRegion),
		centers: make(map[hubKey]*Center),
	}
}

// Center returns the center for region id, creating it on first use. It
// returns false when open cannot find the region.
func (h *Hub) Center(id string, exclusive bool) (*Center, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := hubKey{region: id, exclusive: exclusive}
	if c, ok := h.centers[key]; ok {
		return c, true
	}
	shared, ok := h.regions[id]
	if !ok {
		region, found := h.open(id)
		if !found {
			return nil, false
		}
		shared = &sharedRegion{region: region}
		h.regions[id] = shared
	}

	opts := append([]Option(nil), h.opts...)
	if exclusive {
		opts = append(opts, Exclusive())
	}
	view := &regionView{shared: shared}
	c := New(view, opts...)
	view.owner = c
	shared.add(c)
	h.centers[key] = c
	return c, true
}

type sharedRegion struct {
	region Region
	mu     sync.Mutex
	owners []*Center
}

func (s *sharedRegion) add(c *Center) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners = append(s.owners, c)
}

func (s *sharedRegion) clear(caller *Center) {
	s.mu.Lock()
	owners := append([]*Center(nil), s.owners...)
	s.mu.Unlock()
	for _, c := range owners {
		if c == caller {
			continue
		}
		c.mu.Lock()
		c.clearLocked()
		c.mu.Unlock()
	}
	s.region.Clear()
}

// regionView is one center's handle on a shared region.
type regionView struct {
	shared *sharedRegion
	owner  *Center
}

func (v *regionView) Append(msg Message, dismiss func()) { v.shared.region.Append(msg, dismiss) }

func (v *regionView) Remove(id string) { v.shared.region.Remove(id) }

func (v *regionView) Clear() { v.shared.clear(v.owner) }
