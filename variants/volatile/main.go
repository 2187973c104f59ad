// The volatile variant keeps the spin loop alive with atomic counter
// increments, the closest Go equivalent of a volatile-qualified counter.
package main

import (
	"sync/atomic"
	"time"

	"waste-bench/internal/spin"
)

// ticks is only ever touched through atomic operations, so the compiler
// must emit every increment.
var ticks uint64

func main() { spin.Run(wait) }

func wait(seconds int) {
	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	for time.Now().Before(deadline) {
		for i := 0; i < 1000000; i++ {
			atomic.AddUint64(&ticks, 1)
		}
	}
}
