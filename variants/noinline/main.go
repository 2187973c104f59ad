// The noinline variant burns cycles in a function the compiler is forbidden
// to inline, so the inner loop survives every optimization level.
package main

import (
	"time"

	"waste-bench/internal/spin"
)

func main() { spin.Run(wait) }

func wait(seconds int) {
	deadline := time.Now().Add(time.Duration(seconds) * time.Second)
	for time.Now().Before(deadline) {
		burn(1000000)
	}
}

//go:noinline
func burn(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s += i
	}
	return s
}
