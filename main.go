package main

import (
	"github.com/joho/godotenv"

	"r0fit/cmd"
)

func main() {
	// Optional .env for local runs; environment wins when both are set.
	_ = godotenv.Load()

	cmd.Execute()
}
