package main

import (
	"github.com/joho/godotenv"

	"github.com/ykykj/assistant/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cmd.SetVersion(version)
	cmd.Execute()
}
