//go:build unix

package exec

import (
	stderrors "errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killProcessGroup runs cmd in its own process group and makes cancellation
// kill the whole group, so grandchildren do not keep the output pipes open.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		if stderrors.Is(err, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
