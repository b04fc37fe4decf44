// Command nomadpath tracks skills and levels up a character from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/nomadpath/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
