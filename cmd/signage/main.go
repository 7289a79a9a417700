// Command signage renders and serves signage display layouts.
package main

import (
	"os"

	"github.com/go-drift/signage/cmd/signage/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
