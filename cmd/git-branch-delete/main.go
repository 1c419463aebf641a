// Command git-branch-delete runs `gitutils branch-delete` so that `git branch-delete` resolves to it.
package main

import (
	"os"

	"github.com/temirov/gitutils/cmd/cli"
)

func main() {
	os.Exit(cli.Main("branch-delete"))
}
