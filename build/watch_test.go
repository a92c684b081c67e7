package build

import (
	"testing"
	"time"
)

func TestDebouncerCoalescesBursts(t *testing.T) {
	rebuildReq, trigger := newDebouncer()

	for i := 0; i < 10; i++ {
		trigger()
	}

	select {
	case <-rebuildReq:
	case <-time.After(5 * debounceDelay):
		t.Fatal("debouncer never fired")
	}

	// The burst collapses into a single request.
	select {
	case <-rebuildReq:
		t.Fatal("debouncer fired more than once for one burst")
	case <-time.After(2 * debounceDelay):
	}
}
