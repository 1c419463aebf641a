// Command git-branch-switch runs `gitutils branch-switch` so that `git branch-switch` resolves to it.
package main

import (
	"os"

	"github.com/temirov/gitutils/cmd/cli"
)

func main() {
	os.Exit(cli.Main("branch-switch"))
}
