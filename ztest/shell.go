package ztest

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RunShell runs script with "bash -e -o pipefail" in dir, reading stdin.
// The directories in path are prepended to PATH and env is appended to
// the environment.  It returns the script's standard output and standard
// error.
func RunShell(ctx context.Context, dir, path, script string, stdin io.Reader, env []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-e", "-o", "pipefail", "-c", script)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Env = append(os.Environ(), env...)
	if path != "" {
		var dirs []string
		for _, d := range filepath.SplitList(path) {
			if abs, err := filepath.Abs(d); err == nil {
				d = abs
			}
			dirs = append(dirs, d)
		}
		dirs = append(dirs, os.Getenv("PATH"))
		cmd.Env = append(cmd.Env, "PATH="+strings.Join(dirs, string(filepath.ListSeparator)))
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
