// Command dynweather runs the weather, holiday and date effect engine.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dynweather/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
