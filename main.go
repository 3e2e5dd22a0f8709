package main

import (
	"github.com/FranLegon/cloud-drives-search/cmd"
)

// main hands control to the root cobra command. Argument parsing and flag
// handling live in the cmd package.
func main() {
	cmd.Execute()
}
