package main

import (
	"fmt"
	"os"

	"github.com/roach88/triplestream/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", cli.GetErrorCode(err), err)
		os.Exit(cli.GetExitCode(err))
	}
}
