package config

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv pins the base directory for relative runtime paths (logs, dist,
// docs, schemas). Container images set it to the app directory.
const HomeEnv = "STYLESCANNER_HOME"

// RuntimeBase returns the directory relative runtime paths are joined onto:
// $STYLESCANNER_HOME, else the directory of the symlink-resolved executable.
// Binaries started with `go run` live in the build cache, so those use the
// working directory instead.
func RuntimeBase() string {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return filepath.Clean(home)
	}
	if dir, ok := executableDir(); ok && !inBuildCache(dir) {
		return dir
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	return "."
}

func executableDir() (string, bool) {
	exe, err := os.Executable()
	if err != nil || strings.TrimSpace(exe) == "" {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), true
}

func inBuildCache(dir string) bool {
	tmp := filepath.Clean(os.TempDir()) + string(filepath.Separator)
	return strings.HasPrefix(dir, tmp) && strings.Contains(filepath.ToSlash(dir), "/go-build")
}

// resolveRuntimePath anchors raw, or fallback when raw is blank, at base.
// Absolute paths are kept as configured.
func resolveRuntimePath(base, raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(base, target)
}
