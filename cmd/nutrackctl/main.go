package main

import "github.com/nutrack/nutrack/backend/internal/cli"

func main() {
	cli.Execute()
}
