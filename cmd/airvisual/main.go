// Package main provides the airvisual command: an air quality screen for
// the current location, shown in a terminal or served over HTTP.
package main

import (
	"os"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
