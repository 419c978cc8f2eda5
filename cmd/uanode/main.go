// Command uanode browses, reads and writes a YAML-described address space.
package main

import (
	"fmt"
	"os"

	"github.com/chenyanchen/uanode/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.ExitCode(err))
	}
}
