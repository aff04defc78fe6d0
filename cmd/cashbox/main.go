package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cleared-dev/cashbox/internal/commands"
)

func main() {
	// A missing .env is fine; CASHBOX_* overrides may come from the shell.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
