package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/normgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// An inadmissible verdict is a normal outcome: the judgment is
		// already on stdout, only the exit code signals it.
		if !errors.Is(err, cli.ErrInadmissible) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
