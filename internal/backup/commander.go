package backup

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// Commander runs external commands. It exists so tests can substitute the
// mysql/mysqldump binaries with fakes.
type Commander interface {
	// Run executes the command with the given extra environment variables,
	// streaming stdout into w.
	Run(ctx context.Context, w io.Writer, env []string, name string, args ...string) error
	// Output executes the command and returns its stdout.
	Output(ctx context.Context, env []string, name string, args ...string) ([]byte, error)
}

// execCommander is the os/exec backed Commander used in production
type execCommander struct{}

// NewExecCommander returns a Commander backed by os/exec
func NewExecCommander() Commander {
	return execCommander{}
}

func (execCommander) Run(ctx context.Context, w io.Writer, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (execCommander) Output(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stderr = os.Stderr
	return cmd.Output()
}
