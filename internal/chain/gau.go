package chain

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	gau_providers "github.com/lc/gau/v2/pkg/providers"
	gau_runner "github.com/lc/gau/v2/runner"
	"github.com/projectdiscovery/gologger"
)

// runGau collects archived URLs (wayback, commoncrawl, otx, urlscan) for the
// targets after the chain finishes. Passive only, it never touches the
// target; results land in gau.txt and join the burp export.
func (c *Chain) runGau(ctx context.Context) error {
	gologger.Info().Msgf("collecting historical urls for %s...", strings.Join(c.Targets, ", "))

	out, err := os.Create(c.path(gauOutFile))
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer out.Close()

	config := &gau_providers.Config{
		Threads:           5,
		Timeout:           30,
		MaxRetries:        3,
		IncludeSubdomains: true,
	}
	providerNames := []string{"wayback", "commoncrawl", "otx", "urlscan"}

	gau := &gau_runner.Runner{}
	if err := gau.Init(config, providerNames, gau_providers.Filters{}); err != nil {
		return fmt.Errorf("could not initialise gau: %w", err)
	}

	results := make(chan string, 100)
	workChan := make(chan gau_runner.Work)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	gau.Start(ctx, workChan, results)

	go func() {
		for _, target := range c.Targets {
			for _, provider := range gau.Providers {
				workChan <- gau_runner.NewWork(target, provider)
			}
		}
		close(workChan)
	}()

	seen := mapset.NewSet[string]()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for urlStr := range results {
			urlStr = strings.TrimSpace(urlStr)
			if urlStr == "" || !c.Scope.IsInScope(urlStr) {
				continue
			}
			if seen.Add(urlStr) {
				fmt.Fprintln(out, urlStr)
			}
		}
	}()

	gau.Wait()
	close(results)
	wg.Wait()

	gologger.Info().Msgf("gau collected %d historical urls", seen.Cardinality())
	return nil
}
