// Package configs embeds the files daqgen ships with.
//
// BaseTemplates holds the default base FHiCL templates under fcl/. They are
// the last entry on the template search path, after the configured
// directories and FHICL_FILE_PATH, so a site copy of any file replaces the
// built-in one.
//
// UserConfigTemplate is written by `daqgen config init`.
package configs

import (
	"embed"
	"io/fs"
)

//go:embed fcl/*.fcl
var baseTemplates embed.FS

// UserConfigTemplate is the commented starting point for
// ~/.config/daqgen/config.yaml.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// BaseTemplates returns the embedded base templates rooted at fcl/.
func BaseTemplates() fs.FS {
	sub, err := fs.Sub(baseTemplates, "fcl")
	if err != nil {
		panic(err)
	}
	return sub
}
