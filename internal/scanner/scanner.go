// Package scanner locates installed CLAP plugin bundles on disk.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Extension is the file or bundle-directory suffix that marks a CLAP
// plugin.
const Extension = ".clap"

// SearchPaths returns the standard per-platform plugin directories, in
// search order. Directories that do not exist are still listed; Discover
// skips them.
func SearchPaths() []string {
	return searchPathsFor(runtime.GOOS, os.Getenv)
}

// searchPathsFor is the platform-parameterized body of SearchPaths, split
// out so every platform's list is testable.
func searchPathsFor(goos string, getenv func(string) string) []string {
	var paths []string
	switch goos {
	case "darwin":
		if home := getenv("HOME"); home != "" {
			paths = append(paths, filepath.Join(home, "Library", "Audio", "Plug-Ins", "CLAP"))
		}
		paths = append(paths, "/Library/Audio/Plug-Ins/CLAP")
	case "windows":
		if localAppData := getenv("LOCALAPPDATA"); localAppData != "" {
			paths = append(paths, filepath.Join(localAppData, "Programs", "Common", "CLAP"))
		}
		if commonProgramFiles := getenv("COMMONPROGRAMFILES"); commonProgramFiles != "" {
			paths = append(paths, filepath.Join(commonProgramFiles, "CLAP"))
		}
	default:
		if home := getenv("HOME"); home != "" {
			paths = append(paths, filepath.Join(home, ".clap"))
		}
		paths = append(paths, "/usr/lib/clap")
	}
	return paths
}

// Discover walks every search directory recursively and returns the paths
// of all candidates: files or directories whose name ends in .clap. On
// macOS a .clap is a bundle directory, so matching directories are not
// descended into.
func Discover(searchPaths []string) []string {
	var found []string
	for _, root := range searchPaths {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, not fatal.
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), Extension) {
				return nil
			}
			found = append(found, path)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		})
	}
	return found
}

// TempDir returns the validator's scratch directory. The directory is not
// created; callers create it lazily on first use.
func TempDir() string {
	base := os.TempDir()
	if runtime.GOOS == "windows" {
		if t := os.Getenv("TEMP"); t != "" {
			base = t
		}
	}
	return filepath.Join(base, "clap-validator")
}

// EnsureTempDir creates the scratch directory on demand.
func EnsureTempDir() (string, error) {
	dir := TempDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
