// Package templates provides the built-in file templates compiled into cmps.
// Each file under builtin/ is named after the extension it serves.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lepinkainen/cmps/pkg/filesystem"
)

//go:embed builtin
var embedded embed.FS

// Builtin returns the built-in templates as a filesystem whose top level
// holds one file per extension
func Builtin() fs.FS {
	sub, err := fs.Sub(embedded, "builtin")
	if err != nil {
		// fs.Sub only fails on an invalid directory name
		panic(err)
	}
	return sub
}

// Extensions returns the extensions that have a built-in template, sorted
func Extensions() []string {
	entries, err := fs.ReadDir(Builtin(), ".")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// Bootstrap copies the built-in templates into targetDir. Templates that
// already exist there are left alone. Returns the number of files copied.
func Bootstrap(targetDir string) (int, error) {
	builtin := Builtin()

	copied := 0
	for _, name := range Extensions() {
		targetPath := filepath.Join(targetDir, name)

		if _, err := os.Lstat(targetPath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return copied, fmt.Errorf("failed to check %s: %w", targetPath, err)
		}

		content, err := fs.ReadFile(builtin, name)
		if err != nil {
			return copied, fmt.Errorf("failed to read built-in template %s: %w", name, err)
		}

		if err := filesystem.EnsureDirectoryExists(targetPath); err != nil {
			return copied, err
		}

		if err := os.WriteFile(targetPath, content, 0o644); err != nil {
			return copied, fmt.Errorf("failed to write %s: %w", targetPath, err)
		}

		copied++
	}

	return copied, nil
}
