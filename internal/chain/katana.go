package chain

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/katana/pkg/engine/standard"
	"github.com/projectdiscovery/katana/pkg/output"
	katana_types "github.com/projectdiscovery/katana/pkg/types"
)

// katanaStage crawls the live services for endpoints. It reads the cleaned
// URL list the httpx fixup produced, never the raw httpx output.
type katanaStage struct{}

func (s *katanaStage) Name() string        { return "katana" }
func (s *katanaStage) Description() string { return "endpoint crawling" }
func (s *katanaStage) OutputFile() string  { return katanaOutFile }

func (s *katanaStage) CommandLine(c *Chain) []string {
	argv := []string{"katana", "-silent", "-list", c.path(katanaInputFile),
		"-o", c.path(katanaOutFile), "-jc", "-kf", "all", "-c", "10",
		"-d", strconv.Itoa(c.Options.CrawlDepth)}
	if c.Options.Proxy != "" {
		argv = append(argv, "-proxy", c.Options.Proxy)
	}
	return argv
}

func (s *katanaStage) Run(ctx context.Context, c *Chain) error {
	urls, err := readLines(c.path(katanaInputFile))
	if err != nil {
		return err
	}

	out, err := os.Create(c.path(katanaOutFile))
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer out.Close()

	if len(urls) == 0 {
		return nil
	}

	var mu sync.Mutex
	options := &katana_types.Options{
		MaxDepth:          c.Options.CrawlDepth,
		FieldScope:        "rdn",
		BodyReadSize:      math.MaxInt,
		Timeout:           10,
		Concurrency:       10,
		Parallelism:       10,
		RateLimit:         150,
		Strategy:          "depth-first",
		KnownFiles:        "all",
		ScrapeJSResponses: true,
		Silent:            true,
		Proxy:             c.Options.Proxy,
		OnResult: func(result output.Result) {
			mu.Lock()
			fmt.Fprintln(out, result.Request.URL)
			mu.Unlock()
		},
	}

	crawlerOptions, err := katana_types.NewCrawlerOptions(options)
	if err != nil {
		return fmt.Errorf("could not build crawler options: %w", err)
	}
	defer crawlerOptions.Close()

	crawler, err := standard.New(crawlerOptions)
	if err != nil {
		return fmt.Errorf("could not create crawler: %w", err)
	}
	defer crawler.Close()

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := crawler.Crawl(u); err != nil {
			gologger.Warning().Msgf("crawl failed for %s: %s", u, err)
		}
	}
	return nil
}
