// The basic variant busy-waits by polling the monotonic clock until the
// deadline passes.
package main

import (
	"time"

	"waste-bench/internal/spin"
)

func main() { spin.Run(wait) }

func wait(seconds int) {
	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	for time.Now().Before(deadline) {
	}
}
