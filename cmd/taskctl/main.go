package main

import (
	"fmt"
	"os"

	"taskmanager/cmd/taskctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
