package main

import (
	"os"

	"github.com/danieljhkim/devbackup/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	os.Exit(cli.ExitCode(os.Stdout, os.Stderr, cli.Execute()))
}
