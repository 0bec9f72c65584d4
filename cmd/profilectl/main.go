// Command profilectl queries the upstream profile API the same way the server
// does. It is meant for operators checking what a donor's profile returns.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
