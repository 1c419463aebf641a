// Command git-pr-merged runs `gitutils pr-merged` so that `git pr-merged` resolves to it.
package main

import (
	"os"

	"github.com/temirov/gitutils/cmd/cli"
)

func main() {
	os.Exit(cli.Main("pr-merged"))
}
