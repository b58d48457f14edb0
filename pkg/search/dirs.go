package search

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/lepinkainen/cmps/pkg/diag"
	"github.com/lepinkainen/cmps/pkg/filesystem"
)

// PlatformDirs supplies the per-platform standard directories. Any of them
// may be unavailable, in which case that source is left out.
type PlatformDirs interface {
	ConfigDir() (string, error)
	DataDir() (string, error)
	InstallDir() (string, error)
}

type systemDirs struct{}

// SystemDirs returns the platform directories of the running user:
// XDG base directories (or the platform equivalent) and the executable's directory
func SystemDirs() PlatformDirs {
	return systemDirs{}
}

func (systemDirs) ConfigDir() (string, error) {
	if xdg.ConfigHome == "" {
		return "", errors.New("user config directory unavailable")
	}
	return xdg.ConfigHome, nil
}

func (systemDirs) DataDir() (string, error) {
	if xdg.DataHome == "" {
		return "", errors.New("user data directory unavailable")
	}
	return xdg.DataHome, nil
}

func (systemDirs) InstallDir() (string, error) {
	return filesystem.InstallDir()
}

// Options controls which sources Discover includes
type Options struct {
	// WorkDir is where the upward .cmps walk starts. Defaults to the process working directory.
	WorkDir string
	// ExtraDirs are searched after the local directories, in order
	ExtraDirs []string
	// SkipLocal disables the .cmps walk
	SkipLocal bool
	// SkipBuiltin leaves out the templates compiled into the binary
	SkipBuiltin bool
	// Platform defaults to SystemDirs()
	Platform PlatformDirs
}

// Discover computes the ordered source list, highest priority first.
// Directories that cannot be determined are omitted. A directory reachable
// through more than one source only appears at its highest priority.
func Discover(opts Options, log diag.Sink) []Source {
	log = diag.OrDiscard(log)
	platform := opts.Platform
	if platform == nil {
		platform = SystemDirs()
	}

	var sources []Source
	seen := make(map[string]bool)
	add := func(kind Kind, dir string) {
		dir = filepath.Clean(dir)
		if seen[dir] {
			log.Trace("Skipping duplicate base directory", "dir", dir, "kind", kind.String())
			return
		}
		seen[dir] = true
		sources = append(sources, DirSource(kind, dir))
	}

	if !opts.SkipLocal {
		workDir, err := absWorkDir(opts.WorkDir)
		if err != nil {
			log.Debug("Working directory unavailable, skipping local templates", "error", err)
		} else {
			for _, dir := range LocalDirs(workDir) {
				add(KindLocal, dir)
			}
		}
	}

	for _, dir := range opts.ExtraDirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			log.Warn("Ignoring template directory", "dir", dir, "error", err)
			continue
		}
		add(KindExtra, abs)
	}

	if dir, err := platform.ConfigDir(); err != nil {
		log.Debug("User config directory unavailable", "error", err)
	} else {
		add(KindUserConfig, filepath.Join(dir, AppName))
	}

	if dir, err := platform.DataDir(); err != nil {
		log.Debug("User data directory unavailable", "error", err)
	} else {
		add(KindUserData, filepath.Join(dir, AppName))
	}

	if dir, err := platform.InstallDir(); err != nil {
		log.Debug("Installation directory unavailable", "error", err)
	} else {
		add(KindInstall, dir)
	}

	if !opts.SkipBuiltin {
		sources = append(sources, BuiltinSource())
	}

	for i, s := range sources {
		log.Trace("Base directory", "priority", i, "kind", s.Kind.String(), "location", s.Location())
	}

	return sources
}

func absWorkDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// LocalDirs walks from start up to the filesystem root and returns every
// .cmps directory found on the way, nearest first
func LocalDirs(start string) []string {
	var dirs []string

	dir := filepath.Clean(start)
	for {
		candidate := filepath.Join(dir, LocalDirName)
		if filesystem.IsDir(candidate) {
			dirs = append(dirs, candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return dirs
}
