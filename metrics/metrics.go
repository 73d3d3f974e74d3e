package metrics

import (
	"sort"
	"sync"
)

// Counter names used across the server.
const (
	APIRequestsTotal   = "api_requests_total"
	APIRequestsSuccess = "api_requests_success"
	APIRequestsError   = "api_requests_error"

	FriendRequestsSent     = "friend_requests_sent"
	FriendRequestsAccepted = "friend_requests_accepted"
	FriendRequestsRejected = "friend_requests_rejected"
	FriendsAdded           = "friends_added"
	FriendsRemoved         = "friends_removed"

	AccountsCreated = "accounts_created"
	AccountsUpdated = "accounts_updated"

	CacheHits   = "cache_hits"
	CacheMisses = "cache_misses"
)

// Registry keeps in-process counters and gauges. All methods are safe
// for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
	}
}

// Inc adds one to the named counter.
func (r *Registry) Inc(name string) {
	r.Add(name, 1)
}

func (r *Registry) Add(name string, delta int64) {
	r.mu.Lock()
	r.counters[name] += delta
	r.mu.Unlock()
}

func (r *Registry) Counter(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// SetGauge records the current value of a gauge, replacing any previous one.
func (r *Registry) SetGauge(name string, value float64) {
	r.mu.Lock()
	r.gauges[name] = value
	r.mu.Unlock()
}

func (r *Registry) Gauge(name string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.gauges[name]
	return v, ok
}

// Snapshot returns a copy of all counters and gauges for reporting.
func (r *Registry) Snapshot() (counters map[string]int64, gauges map[string]float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counters = make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		counters[k] = v
	}
	gauges = make(map[string]float64, len(r.gauges))
	for k, v := range r.gauges {
		gauges[k] = v
	}
	return counters, gauges
}

// CounterNames returns the registered counter names in sorted order.
func (r *Registry) CounterNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.counters))
	for k := range r.counters {
		names = append(names, k)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Reset clears all recorded values.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.counters = make(map[string]int64)
	r.gauges = make(map[string]float64)
	r.mu.Unlock()
}
