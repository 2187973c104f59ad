// Package spin holds the generic driver shared by every busy-loop variant.
// It is deliberately stdlib-only: the variant binaries are the measured
// payload, and pulling logging or CLI machinery into them would perturb the
// syscall and instruction counts the orchestrator reports.
package spin

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// Run parses the single seconds argument, announces the wait, invokes the
// variant's wait function, and reports completion.
func Run(wait func(seconds int)) {
	os.Exit(run(os.Args, os.Stdout, wait))
}

func run(args []string, out io.Writer, wait func(seconds int)) int {
	if len(args) != 2 {
		fmt.Fprintf(out, "Usage: %s <seconds>\n", args[0])
		return 1
	}

	seconds, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(out, "Usage: %s <seconds>\n", args[0])
		return 1
	}

	fmt.Fprintf(out, "Waiting for %d seconds...\n", seconds)
	wait(seconds)
	fmt.Fprintln(out, "Done!")
	return 0
}
