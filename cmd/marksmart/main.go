package main

import (
	"fmt"
	"os"

	"github.com/mithrel/marksmart/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "marksmart:", err)
		os.Exit(1)
	}
}
