package setup

import _ "embed"

//go:embed templates/env.sh
var envShellTemplate []byte

//go:embed templates/env.fish
var envFishTemplate []byte

//go:embed templates/gitconfig
var gitConfigTemplate []byte
