// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// package build contains build information for the pedigree module.
package build

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var version string

// Version of this build.
var Version = strings.TrimSpace(version)
