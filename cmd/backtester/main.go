package main

import (
	"os"

	"github.com/wonny/backtester/cmd/backtester/commands"
)

// main is the entry point for the backtester CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/backtester [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
