package main

import (
	"os"

	"github.com/money-manager/txnparse/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
