// Command engagectl runs engagement analyses on workbooks from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
