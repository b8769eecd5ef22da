// Package tools locates and provisions the external stage binaries used by
// exec mode. The embedded library driver does not need any of this.
package tools

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/projectdiscovery/gologger"
)

// Tool describes one external stage binary and where go install gets it from.
type Tool struct {
	Name   string
	Module string
}

// All returns the five stage tools in chain order.
func All() []Tool {
	return []Tool{
		{Name: "subfinder", Module: "github.com/projectdiscovery/subfinder/v2/cmd/subfinder"},
		{Name: "dnsx", Module: "github.com/projectdiscovery/dnsx/cmd/dnsx"},
		{Name: "naabu", Module: "github.com/projectdiscovery/naabu/v2/cmd/naabu"},
		{Name: "httpx", Module: "github.com/projectdiscovery/httpx/cmd/httpx"},
		{Name: "katana", Module: "github.com/projectdiscovery/katana/cmd/katana"},
	}
}

// ResolveBinary returns the path of an installed tool binary. Go install
// locations are preferred over system paths so that the Go httpx wins over
// the unrelated Python package of the same name.
func ResolveBinary(name string) (string, error) {
	if path, ok := resolveIn(searchDirs(), name); ok {
		return path, nil
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("binary %s not found, install it with -install-tools", name)
}

// resolveIn checks each directory for an executable with the given name.
func resolveIn(dirs []string, name string) (string, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func searchDirs() []string {
	dirs := []string{goBin()}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "go", "bin"))
	}
	return append(dirs, "/usr/local/bin", "/usr/bin")
}

// goBin asks the go toolchain for its install directory; empty if go is not
// installed or GOBIN is unset.
func goBin() string {
	out, err := exec.Command("go", "env", "GOBIN").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Missing returns the tools that cannot be resolved to a binary.
func Missing() []Tool {
	var missing []Tool
	for _, t := range All() {
		if _, err := ResolveBinary(t.Name); err != nil {
			missing = append(missing, t)
		}
	}
	return missing
}

// CheckInstalled verifies that every stage binary is available. Used before an
// exec mode run.
func CheckInstalled() error {
	missing := Missing()
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, t := range missing {
		names = append(names, t.Name)
	}
	return fmt.Errorf("missing tools: %s (run with -install-tools)", strings.Join(names, ", "))
}

// InstallMissing provisions absent stage binaries via go install.
func InstallMissing() error {
	missing := Missing()
	if len(missing) == 0 {
		gologger.Info().Msg("all tools already installed")
		return nil
	}

	for _, t := range missing {
		gologger.Info().Msgf("installing %s...", t.Name)
		cmd := exec.Command("go", "install", t.Module+"@latest")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("go install %s failed: %w", t.Name, err)
		}
		gologger.Info().Msgf("installed %s", t.Name)
	}
	return nil
}
