package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncAndCounter(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, int64(0), r.Counter(FriendRequestsSent))

	r.Inc(FriendRequestsSent)
	r.Inc(FriendRequestsSent)
	r.Add(FriendRequestsSent, 3)

	assert.Equal(t, int64(5), r.Counter(FriendRequestsSent))
}

func TestGauge(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Gauge("accounts_online")
	assert.False(t, ok)

	r.SetGauge("accounts_online", 12)
	r.SetGauge("accounts_online", 7)

	v, ok := r.Gauge("accounts_online")
	assert.True(t, ok)
	assert.Equal(t, float64(7), v)
}

func TestSnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Inc(CacheHits)
	r.SetGauge("accounts_online", 1)

	counters, gauges := r.Snapshot()
	counters[CacheHits] = 100
	gauges["accounts_online"] = 100

	assert.Equal(t, int64(1), r.Counter(CacheHits))
	v, _ := r.Gauge("accounts_online")
	assert.Equal(t, float64(1), v)
}

func TestCounterNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Inc("b_counter")
	r.Inc("a_counter")
	r.Inc("c_counter")

	assert.Equal(t, []string{"a_counter", "b_counter", "c_counter"}, r.CounterNames())
}

func TestReset(t *testing.T) {
	r := NewRegistry()
	r.Inc(CacheMisses)
	r.SetGauge("accounts_online", 3)
	r.Reset()

	assert.Equal(t, int64(0), r.Counter(CacheMisses))
	_, ok := r.Gauge("accounts_online")
	assert.False(t, ok)
}

func TestConcurrentInc(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Inc(APIRequestsTotal)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(5000), r.Counter(APIRequestsTotal))
}
