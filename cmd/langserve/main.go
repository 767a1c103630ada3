package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/langbench/internal/cli"
)

func main() {
	if err := cli.NewServeCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
