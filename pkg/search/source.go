// Package search resolves file templates across the layered cmps search path.
//
// The search path is an ordered list of sources, highest priority first:
// local .cmps directories found walking up from the working directory,
// directories named in the configuration file, the user config directory,
// the user data directory, the installation directory and finally the
// templates compiled into the binary. Each source holds its templates in a
// "templates" subdirectory, one file per extension.
package search

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/lepinkainen/cmps/templates"
)

const (
	// AppName is the subdirectory used under the platform config and data directories
	AppName = "cmps"
	// LocalDirName marks a project-local template directory
	LocalDirName = ".cmps"
	// TemplatesDir is the subdirectory of every source that holds the templates
	TemplatesDir = "templates"

	builtinPrefix = "builtin:"
)

// Kind identifies where a source came from
type Kind int

// Source kinds in default priority order
const (
	KindLocal Kind = iota
	KindExtra
	KindUserConfig
	KindUserData
	KindInstall
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindExtra:
		return "extra"
	case KindUserConfig:
		return "user-config"
	case KindUserData:
		return "user-data"
	case KindInstall:
		return "install"
	case KindBuiltin:
		return "builtin"
	}
	return "unknown"
}

// Source is one root of the template search hierarchy
type Source struct {
	Kind Kind
	// Dir is the base directory. Empty for the built-in source.
	Dir string
	// FS is rooted at the source's templates directory
	FS fs.FS
}

// DirSource returns a source reading templates from dir/templates
func DirSource(kind Kind, dir string) Source {
	return Source{
		Kind: kind,
		Dir:  dir,
		FS:   os.DirFS(filepath.Join(dir, TemplatesDir)),
	}
}

// BuiltinSource returns the source backed by the templates compiled into the binary
func BuiltinSource() Source {
	return Source{Kind: KindBuiltin, FS: templates.Builtin()}
}

// TemplatePath returns the display path of the template for extension in this source
func (s Source) TemplatePath(extension string) string {
	if s.Kind == KindBuiltin {
		return builtinPrefix + path.Join(TemplatesDir, extension)
	}
	return filepath.Join(s.Dir, TemplatesDir, extension)
}

// Location returns the display path of the source's templates directory
func (s Source) Location() string {
	if s.Kind == KindBuiltin {
		return builtinPrefix + TemplatesDir
	}
	return filepath.Join(s.Dir, TemplatesDir)
}
