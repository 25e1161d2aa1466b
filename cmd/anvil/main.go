package main

import (
	"context"
	"os"

	"github.com/eshaffer321/anvil/internal/cli"
)

func main() {
	app := cli.NewApp()

	// Answers shell completion requests and exits; no-op otherwise.
	cli.Completion(app).Complete(cli.Name)

	os.Exit(int(cli.Run(context.Background(), app, os.Args[1:])))
}
