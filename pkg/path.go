package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Prefix returns the directory name used beneath the user config and
// cache roots.
//
// It is derived from the executable's base name, with two adjustments:
// the "__debug_bin*" names produced by dlv map to [Name], and any
// leading dots are stripped.
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		base := filepath.Base(id)
		base = strings.TrimSuffix(base, filepath.Ext(base))

		if strings.HasPrefix(base, "__debug_bin") {
			return Name
		}

		if id := strings.TrimLeft(base, "."); id != "" {
			return id
		}

		return base
	},
)

// ConfigDir returns the directory holding the user's configuration file.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string { return userDir(os.UserConfigDir, ".config") },
)

// CacheDir returns the directory holding transient files such as parse
// tables.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string { return userDir(os.UserCacheDir, ".cache") },
)

// userDir resolves a per-user directory, falling back to a dot
// directory under $HOME and finally the working directory.
func userDir(lookup func() (string, error), dotDir string) string {
	dir, err := lookup()
	if err != nil {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dotDir)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
