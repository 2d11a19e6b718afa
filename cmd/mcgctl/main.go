package main

import (
	"fmt"
	"os"

	"github.com/turtacn/mcgclock/internal/cli"
	"github.com/turtacn/mcgclock/pkg/logger"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if logger.Log != nil {
				logger.Log.Error("mcgctl panicked", "panic", r)
			} else {
				fmt.Fprintf(os.Stderr, "mcgctl panicked: %v\n", r)
			}
			os.Exit(cli.ExitFailure)
		}
	}()

	cli.Execute()
}

// Personal.AI order the ending
