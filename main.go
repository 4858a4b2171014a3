package main

import (
	"github.com/joho/godotenv"

	"github.com/Kruglikle/Free-room-MIET/cmd"
)

func main() {
	// Missing .env is fine, everything has defaults
	_ = godotenv.Load()

	cmd.Execute()
}
