package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"uni-meal-planner/internal/cli"
)

func main() {
	// Local development keeps secrets in a .env file; in production the
	// variables come from the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := cli.BuildCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
