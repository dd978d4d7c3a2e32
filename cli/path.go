package cli

import (
	"os"
	"path/filepath"

	"github.com/deepankarsharma/enaml/pkg"
)

// baseConfig is the base name of the configuration file and namespace.
const baseConfig = "config"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configDir returns the configuration directory path.
func configDir() string { return pkg.ConfigDir() }

// cacheDir returns the cache directory path used for transient files
// such as compiled parse tables and profiler output.
func cacheDir() string { return pkg.CacheDir() }

// configPath returns the absolute path to a file or directory formed by
// joining the configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	err := os.MkdirAll(configDir(), defaultDirMode)
	if err != nil {
		return err
	}

	return os.MkdirAll(cacheDir(), defaultDirMode)
}
