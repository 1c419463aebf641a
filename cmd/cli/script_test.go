package cli_test

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/temirov/gitutils/cmd/cli"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"gitutils":          func() int { return cli.Main() },
		"git-branch-delete": func() int { return cli.Main("branch-delete") },
		"git-pr-merged":     func() int { return cli.Main("pr-merged") },
		"git-repo":          func() int { return cli.Main("repo") },
		"git-utils":         func() int { return cli.Main() },
	}))
}

func TestScripts(testInstance *testing.T) {
	testscript.Run(testInstance, testscript.Params{
		Dir: "testdata/script",
		Setup: func(environment *testscript.Env) error {
			environment.Setenv("HOME", environment.WorkDir)
			environment.Setenv("XDG_CONFIG_HOME", environment.WorkDir+"/.config")
			environment.Setenv("SHELL", "/bin/bash")
			return nil
		},
	})
}
