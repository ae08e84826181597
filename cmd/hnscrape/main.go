package main

import (
	"log/slog"
	"os"

	"hnscrape/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
