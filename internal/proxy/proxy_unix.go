package proxy

import (
	"os/exec"
	"syscall"
)

// setDetached puts the spawned daemon in its own session so it
// survives the proxy (and the SSH session that invoked it) exiting.
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
