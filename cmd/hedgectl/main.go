// Command hedgectl administers the in-flight transfer ledger and prices
// quotes offline against the configured fee schedule.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
