// Command git-repo runs `gitutils repo` so that `git repo` resolves to it.
package main

import (
	"os"

	"github.com/temirov/gitutils/cmd/cli"
)

func main() {
	os.Exit(cli.Main("repo"))
}
