// Command resetdopa runs the ResetDopa habit engine and its CLI.
package main

import "github.com/resetdopa/engine/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
