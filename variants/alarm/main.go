// The alarm variant spins until an asynchronous timer fires. The timer sets
// an atomic stop flag checked by the loop, so the early exit needs no
// non-local control transfer.
package main

import (
	"sync/atomic"
	"time"

	"waste-bench/internal/spin"
)

func main() { spin.Run(wait) }

func wait(seconds int) {
	var stop atomic.Bool
	timer := time.AfterFunc(time.Duration(seconds)*time.Second, func() {
		stop.Store(true)
	})
	defer timer.Stop()

	for !stop.Load() {
	}
}
