package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/plc/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

var defaultDirMode os.FileMode = 0o700

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// searchPathEnv returns the name of the environment variable holding the
// source search path, e.g. PLC_PATH.
func searchPathEnv() string {
	return strings.ToUpper(pkg.Prefix()) + "_PATH"
}

// searchPath composes the directories searched for relative source names:
// the --path flags first, then the entries of env. Entries that are not
// existing directories are dropped.
func searchPath(env string, flags []string) []string {
	list := mung.Make(
		mung.WithSubjectItems(env),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(flags...),
		mung.WithFilter(isDir),
	).String()

	if list == "" {
		return nil
	}

	return filepath.SplitList(list)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
