// Command colorbook opens a coloring page in a window and exports or
// prints saved pages.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
