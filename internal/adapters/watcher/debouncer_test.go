package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carve-build/carve/internal/adapters/watcher"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, paths)
		})

		d.Add("src/index.js")
		d.Add("src/app.js")
		d.Add("src/index.js") // duplicate, deduplicated via interning

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, calls, 1, "burst must coalesce into a single callback")
		assert.ElementsMatch(t, []string{"src/index.js", "src/app.js"}, calls[0])
	})
}

func TestDebouncer_RestartsWindowOnAdd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var callCount int

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			mu.Lock()
			defer mu.Unlock()
			callCount++
		})

		d.Add("a.js")
		time.Sleep(60 * time.Millisecond)
		d.Add("b.js")
		time.Sleep(60 * time.Millisecond)

		mu.Lock()
		assert.Equal(t, 0, callCount, "window restarted, callback must not have fired yet")
		mu.Unlock()

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, callCount)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	var mu sync.Mutex
	var received []string

	d := watcher.NewDebouncer(time.Hour, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		received = paths
	})

	d.Add("src/index.js")
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"src/index.js"}, received, "flush delivers synchronously")
}

func TestDebouncer_FlushEmpty(t *testing.T) {
	called := false
	d := watcher.NewDebouncer(time.Hour, func([]string) { called = true })

	d.Flush()
	assert.False(t, called, "no pending paths, no callback")
}
