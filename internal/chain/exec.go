package chain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/projectdiscovery/gologger"

	"github.com/J0sephhx/SubDomain-Enum/internal/tools"
)

// runExec drives a stage by spawning the installed external binary with the
// same argv that -dry-run prints. The tool writes its own -o file, so the
// hand-off contract is identical to the library driver.
func (c *Chain) runExec(ctx context.Context, st Stage) error {
	argv := st.CommandLine(c)

	bin, err := tools.ResolveBinary(argv[0])
	if err != nil {
		return err
	}

	gologger.Verbose().Msgf("exec: %s", strings.Join(argv, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// lastLine extracts the final non-empty stderr line, usually the actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
