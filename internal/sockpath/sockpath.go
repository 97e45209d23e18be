// Package sockpath resolves the daemon's Unix socket path using the
// same fallback chain the daemon, proxy, and doctor command all need
// to agree on independently.
package sockpath

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	runtimeDirName = "ssh_clipboard"
	socketFileName = "daemon.sock"
)

// Resolve returns the socket path to use, honoring override first,
// then $XDG_RUNTIME_DIR, then $TMPDIR, then /tmp — each scoped by the
// directory name ssh_clipboard (runtime dir) or ssh_clipboard-<uid>
// (the TMPDIR/tmp fallbacks, which are shared across users).
func Resolve(override string) string {
	if override != "" {
		return override
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, runtimeDirName, socketFileName)
	}
	uid := os.Getuid()
	if dir := os.Getenv("TMPDIR"); dir != "" {
		return filepath.Join(dir, fmt.Sprintf("%s-%d", runtimeDirName, uid), socketFileName)
	}
	return filepath.Join("/tmp", fmt.Sprintf("%s-%d", runtimeDirName, uid), socketFileName)
}

// Dir returns the directory component of a socket path resolved by
// Resolve, for directory-level permission setup.
func Dir(socketPath string) string {
	return filepath.Dir(socketPath)
}
