package chain

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/subfinder/v2/pkg/resolve"
	subfinder_runner "github.com/projectdiscovery/subfinder/v2/pkg/runner"
)

// subfinderStage enumerates subdomains passively for every target. Results
// are scope-filtered and deduplicated before they reach the hand-off file.
type subfinderStage struct{}

func (s *subfinderStage) Name() string        { return "subfinder" }
func (s *subfinderStage) Description() string { return "passive subdomain enumeration" }
func (s *subfinderStage) OutputFile() string  { return subfinderOutFile }

func (s *subfinderStage) CommandLine(c *Chain) []string {
	argv := []string{"subfinder", "-all", "-silent"}
	if c.Options.List != "" {
		argv = append(argv, "-dL", c.Options.List)
	} else {
		argv = append(argv, "-d", strings.Join(c.Targets, ","))
	}
	return append(argv, "-o", c.path(subfinderOutFile))
}

func (s *subfinderStage) Run(ctx context.Context, c *Chain) error {
	out, err := os.Create(c.path(subfinderOutFile))
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer out.Close()

	var mu sync.Mutex
	seen := map[string]bool{}
	var totalFound, excluded int64

	opts := &subfinder_runner.Options{
		Domain:             goflags.StringSlice(c.Targets),
		All:                true,
		Silent:             true,
		Timeout:            30,
		MaxEnumerationTime: 10,
		Threads:            10,
		DisableUpdateCheck: true,
		Output:             io.Discard,
		ProviderConfig:     "",
		ResultCallback: func(entry *resolve.HostEntry) {
			atomic.AddInt64(&totalFound, 1)
			host := strings.ToLower(strings.TrimSpace(entry.Host))
			if host == "" {
				return
			}
			if !c.Scope.IsInScope(host) {
				atomic.AddInt64(&excluded, 1)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if !seen[host] {
				seen[host] = true
				fmt.Fprintln(out, host)
			}
		},
	}

	r, err := subfinder_runner.NewRunner(opts)
	if err != nil {
		return fmt.Errorf("could not create subfinder runner: %w", err)
	}
	if err := r.RunEnumerationWithCtx(ctx); err != nil {
		return fmt.Errorf("enumeration failed: %w", err)
	}

	gologger.Verbose().Msgf("subfinder saw %d hosts, excluded %d as out of scope",
		atomic.LoadInt64(&totalFound), atomic.LoadInt64(&excluded))
	return nil
}
