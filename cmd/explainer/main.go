package main

import (
	"glassbox/explainer/internal/cli"
)

// main starts the explainer CLI by delegating to the cobra root command.
func main() {
	cli.Execute()
}
