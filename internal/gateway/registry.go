package gateway

// Registry maps match IDs to the local clients subscribed to them. It is
// purely process-local and owned by the hub goroutine: every mutation
// happens on the hub's single dispatch path, so no locking is needed.
type Registry struct {
	subscribers map[int64]map[*client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{subscribers: make(map[int64]map[*client]struct{})}
}

// Subscribe adds c to the set for matchID, creating the set if absent.
func (r *Registry) Subscribe(matchID int64, c *client) {
	set, ok := r.subscribers[matchID]
	if !ok {
		set = make(map[*client]struct{})
		r.subscribers[matchID] = set
	}
	set[c] = struct{}{}
	c.subscriptions[matchID] = struct{}{}
}

// Unsubscribe removes c from the set for matchID and deletes the set if
// it becomes empty, so the map never leaks empty entries.
func (r *Registry) Unsubscribe(matchID int64, c *client) {
	set, ok := r.subscribers[matchID]
	if !ok {
		return
	}
	delete(set, c)
	delete(c.subscriptions, matchID)
	if len(set) == 0 {
		delete(r.subscribers, matchID)
	}
}

// Cleanup removes c from every match it was subscribed to, driven by the
// client's own subscription set for O(subscriptions) cost.
func (r *Registry) Cleanup(c *client) {
	for matchID := range c.subscriptions {
		r.Unsubscribe(matchID, c)
	}
}

// Subscribers returns the set for matchID; nil when nobody subscribes.
func (r *Registry) Subscribers(matchID int64) map[*client]struct{} {
	return r.subscribers[matchID]
}

// SubscriberCount returns the number of clients subscribed to matchID.
func (r *Registry) SubscriberCount(matchID int64) int {
	return len(r.subscribers[matchID])
}
