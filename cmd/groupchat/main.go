package main

import (
	"os"

	"github.com/groupchat/groupchat/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
