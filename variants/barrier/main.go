// The barrier variant stores the loop result to a package-level sink, an
// explicit optimization barrier that keeps the arithmetic observable.
package main

import (
	"time"

	"waste-bench/internal/spin"
)

var sink int

func main() { spin.Run(wait) }

func wait(seconds int) {
	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	for time.Now().Before(deadline) {
		s := 0
		for i := 0; i < 1000000; i++ {
			s += i
		}
		sink = s
	}
}
