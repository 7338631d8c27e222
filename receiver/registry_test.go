package receiver

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id, owner string) *Session {
	return newSession(Candidate{ID: id, Owner: owner, PID: 1}, 9400)
}

func TestRegistry_Put(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	assert.Nil(t, r.Put(testSession("s1", "app.a")))
	assert.Equal(t, 1, r.Size())

	prior := r.Put(testSession("s2", "app.a"))
	require.NotNil(t, prior)
	assert.Equal(t, "s1", prior.ID)
	assert.Equal(t, 1, r.Size(), "same-owner insert replaces")

	assert.Nil(t, r.Put(testSession("s3", "app.b")))
	assert.Equal(t, 2, r.Size())
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Put(testSession("s1", "app.a"))

	assert.Equal(t, "s1", r.Get("app.a").ID)
	assert.Nil(t, r.Get("app.b"))

	assert.Equal(t, "app.a", r.ByID("s1").Owner)
	assert.Nil(t, r.ByID("s-ghost"))
}

func TestRegistry_Remove(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Put(testSession("s1", "app.a"))

	removed := r.Remove("app.a")
	require.NotNil(t, removed)
	assert.Equal(t, "s1", removed.ID)
	assert.Zero(t, r.Size())

	// Removing an absent owner is a no-op, not an error.
	assert.Nil(t, r.Remove("app.a"))
}

func TestRegistry_Pending(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := testSession("s1", "app.a")
	b := testSession("s2", "app.b")
	r.Put(a)
	r.Put(b)

	assert.Len(t, r.Pending(), 2)

	won, err := a.activate()
	require.NoError(t, err)
	require.True(t, won)

	pending := r.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "s2", pending[0].ID)
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Put(testSession("s1", "app.a"))
	r.Put(testSession("s2", "app.b"))

	r.Clear()
	assert.Zero(t, r.Size())
	assert.Nil(t, r.Get("app.a"))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			owner := fmt.Sprintf("app.%d", w%4)
			for i := 0; i < 200; i++ {
				r.Put(testSession(fmt.Sprintf("s-%d-%d", w, i), owner))
				r.Get(owner)
				r.Size()
				if i%10 == 0 {
					r.Remove(owner)
				}
			}
		}(w)
	}
	wg.Wait()

	// Uniqueness invariant holds under concurrency: never more
	// sessions than distinct owners.
	assert.LessOrEqual(t, r.Size(), 4)
}

func TestSession_ActivateOnce(t *testing.T) {
	t.Parallel()

	s := testSession("s1", "app.a")
	require.False(t, s.Started())

	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.activate()
			assert.NoError(t, err)
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one caller wins the flip")
	assert.True(t, s.Started())
}
