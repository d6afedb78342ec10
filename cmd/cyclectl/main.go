// Command cyclectl inspects a 90-day batch offline: where a date falls in a
// cycle, how a message would be classified, and service tokens for chat
// integrations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
