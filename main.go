// Command mrdu shows the disk usage of a directory as a tree.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/mrdu/internal/cli"
)

// version is the application version, set via ldflags.
//
//nolint:gochecknoglobals // Set at build time
var version = "dev"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
