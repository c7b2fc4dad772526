package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// HistoryFormat is the pretty format of every header line in the history log.
// Fields are hash, short date, author name and author email.
const HistoryFormat = "%H,%ad,%aN,%ae"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetHistoryLog implements the GitClient interface.
func (c *LocalGitClient) GetHistoryLog(ctx context.Context, repoPath string) ([]byte, error) {
	args := []string{
		"log",
		"--date=short",
		"--numstat",
		"--pretty=format:" + HistoryFormat,
	}
	return c.Run(ctx, repoPath, args...)
}
