// Command git-utils runs the whole gitutils tree as `git utils`, which is where setup and config live.
package main

import (
	"os"

	"github.com/temirov/gitutils/cmd/cli"
)

func main() {
	os.Exit(cli.Main())
}
