package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// defaultTimeout bounds a single synthesis subprocess. Long chunks on slow
// machines can take a while, so this is generous.
const defaultTimeout = 2 * time.Minute

// runCommand executes an external tool and returns its standard output.
// Stdin is wired up before the process starts to avoid write races, and a
// deadline is applied unless the context already carries one.
func runCommand(ctx context.Context, stdin string, name string, args ...string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s timed out", name)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}

// binaryAvailable reports whether name resolves on the execution path.
func binaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
