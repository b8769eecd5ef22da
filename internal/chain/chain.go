// Package chain implements the sequential reconnaissance pipeline:
// subfinder -> dnsx -> naabu -> httpx -> katana. Each stage completes and
// leaves its output file on disk before the next stage starts; the filesystem
// is the only hand-off between stages.
package chain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"

	"github.com/J0sephhx/SubDomain-Enum/internal/cli"
	"github.com/J0sephhx/SubDomain-Enum/internal/scope"
	"github.com/J0sephhx/SubDomain-Enum/internal/tools"
)

// Chain drives the five stages strictly in order.
type Chain struct {
	Options *cli.Options
	Scope   *scope.Scope
	Targets []string // root target domains
}

// New resolves targets and scope from the parsed options.
func New(options *cli.Options) (*Chain, error) {
	var s *scope.Scope
	var err error
	if options.ScopeFile != "" {
		if s, err = scope.Load(options.ScopeFile); err != nil {
			return nil, err
		}
	}

	var targets []string
	switch {
	case options.Domain != "":
		targets = []string{strings.ToLower(strings.TrimSpace(options.Domain))}
	case options.List != "":
		if targets, err = readLines(options.List); err != nil {
			return nil, fmt.Errorf("could not read domain list: %w", err)
		}
	default:
		targets = s.Domains()
	}
	if len(targets) == 0 {
		return nil, errors.New("no target domains resolved from input")
	}

	// A plain -d/-l run means the domain and everything under it.
	if s == nil {
		s = scope.FromDomains(targets)
	}

	return &Chain{Options: options, Scope: s, Targets: targets}, nil
}

// path locates a stage file inside the output directory.
func (c *Chain) path(name string) string {
	return filepath.Join(c.Options.OutputDir, name)
}

// Run executes the chain. A stage error aborts the run; an empty stage output
// does not, the next stage simply receives an empty file.
func (c *Chain) Run(ctx context.Context) error {
	stages := Stages()

	if c.Options.DryRun {
		for _, st := range stages {
			gologger.Silent().Msgf("DRY RUN [%s]: %s", st.Name(), strings.Join(st.CommandLine(c), " "))
		}
		return nil
	}

	if c.Options.Exec {
		if err := tools.CheckInstalled(); err != nil {
			return err
		}
	}

	if err := fileutil.CreateFolder(c.Options.OutputDir); err != nil {
		return fmt.Errorf("could not create output directory %s: %w", c.Options.OutputDir, err)
	}

	gologger.Info().Msgf("target: %s", strings.Join(c.Targets, ", "))
	gologger.Info().Msgf("output: %s", c.Options.OutputDir)
	if c.Options.Proxy != "" {
		gologger.Info().Msgf("proxy: %s (httpx and katana stages)", c.Options.Proxy)
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		gologger.Info().Msgf("running %s (%s)...", st.Name(), st.Description())

		var err error
		if c.Options.Exec {
			err = c.runExec(ctx, st)
		} else {
			err = st.Run(ctx, c)
		}
		if err != nil {
			return fmt.Errorf("stage %s: %w", st.Name(), err)
		}

		if err := c.afterStage(st); err != nil {
			return fmt.Errorf("stage %s: %w", st.Name(), err)
		}
		gologger.Info().Msgf("%s completed, %d results", st.Name(), countLines(c.path(st.OutputFile())))
	}

	if c.Options.Gau {
		if err := c.runGau(ctx); err != nil {
			gologger.Warning().Msgf("historical url enrichment failed: %s", err)
		}
	}

	burpCount, err := c.writeBurpExport()
	if err != nil {
		return err
	}
	gologger.Info().Msgf("burp import file written with %d urls", burpCount)

	if err := c.writeSummary(); err != nil {
		return err
	}

	if c.Options.LLMPrompt {
		if err := c.writeLLMPrompt(); err != nil {
			gologger.Warning().Msgf("could not write llm prompt: %s", err)
		}
	}

	gologger.Info().Msgf("recon chain complete, summary at %s", c.path(summaryFile))
	return nil
}

// afterStage applies the hand-off fixups between stages.
func (c *Chain) afterStage(st Stage) error {
	out := c.path(st.OutputFile())
	if err := touch(out); err != nil {
		return err
	}

	switch st.Name() {
	case "subfinder":
		// The sources occasionally miss the root domain itself.
		if err := c.appendRootDomains(out); err != nil {
			return err
		}
		return scopeFilterFile(out, c.Scope)
	case "httpx":
		return cleanKatanaInput(out, c.path(katanaInputFile))
	}
	return nil
}

// readLines loads the non-empty trimmed lines of a file. A missing file is an
// empty input, not an error.
func readLines(path string) ([]string, error) {
	if !fileutil.FileExists(path) {
		return nil, nil
	}
	ch, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	var lines []string
	for line := range ch {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// touch makes sure a stage output file exists even when the stage found
// nothing.
func touch(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not touch %s: %w", path, err)
	}
	return f.Close()
}

// appendRootDomains adds the root targets to the enumeration output when the
// sources missed them; the root itself is always worth probing.
func (c *Chain) appendRootDomains(path string) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	present := map[string]bool{}
	for _, l := range lines {
		present[strings.ToLower(l)] = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, target := range c.Targets {
		if !present[strings.ToLower(target)] {
			fmt.Fprintln(f, target)
		}
	}
	return nil
}

// scopeFilterFile rewrites a line file keeping only in-scope entries. Exec
// mode needs this because the external binaries know nothing about scope.
func scopeFilterFile(path string, s *scope.Scope) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	kept := s.Filter(lines)

	var sb strings.Builder
	for _, l := range kept {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("could not rewrite %s: %w", path, err)
	}

	if dropped := len(lines) - len(kept); dropped > 0 {
		gologger.Verbose().Msgf("scope filter dropped %d entries from %s", dropped, path)
	}
	return nil
}

// cleanKatanaInput strips the bracketed metadata httpx appends after each URL
// so the crawler receives a pure URL list.
func cleanKatanaInput(httpxPath, cleanPath string) error {
	lines, err := readLines(httpxPath)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, line := range lines {
		u := strings.SplitN(line, " ", 2)[0]
		if strings.HasPrefix(u, "http") {
			sb.WriteString(u)
			sb.WriteByte('\n')
		}
	}
	if err := os.WriteFile(cleanPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("could not write crawler input: %w", err)
	}
	return nil
}
