package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// CheckBinary verifies that the command resolves on PATH.
func CheckBinary(name, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeDisk verifies the filesystem holding path has at least
// minGiB gibibytes available.
func CheckFreeDisk(name, path string, minGiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	freeGiB := float64(stat.Bavail) * float64(stat.Bsize) / (1 << 30)
	if freeGiB < float64(minGiB) {
		return Result{Name: name, Detail: fmt.Sprintf("%.1f GiB free, need %d GiB", freeGiB, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%.1f GiB free", freeGiB)}
}
