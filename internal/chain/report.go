package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"
)

const llmPromptMaxURLs = 200

// Summary is the aggregate record written next to the stage files.
type Summary struct {
	Target    string         `json:"target"`
	Timestamp string         `json:"timestamp"`
	Stats     map[string]int `json:"stats"`
}

// writeBurpExport merges the probed URLs and crawled endpoints into a
// deduplicated, sorted URL list suitable for proxy import.
func (c *Chain) writeBurpExport() (int, error) {
	urls := mapset.NewSet[string]()

	// httpx lines carry status/title/tech after the URL and need cleaning;
	// katana and gau output is already pure URLs.
	collect := func(path string, clean bool) {
		lines, err := readLines(path)
		if err != nil {
			return
		}
		for _, line := range lines {
			u := line
			if clean {
				u = strings.SplitN(line, " ", 2)[0]
			}
			if strings.HasPrefix(u, "http") {
				urls.Add(u)
			}
		}
	}

	collect(c.path(httpxOutFile), true)
	collect(c.path(katanaOutFile), false)
	collect(c.path(gauOutFile), false)

	sorted := urls.ToSlice()
	sort.Strings(sorted)

	out, err := os.Create(c.path(burpOutFile))
	if err != nil {
		return 0, fmt.Errorf("could not create burp export: %w", err)
	}
	defer out.Close()
	for _, u := range sorted {
		fmt.Fprintln(out, u)
	}
	return len(sorted), nil
}

// writeSummary persists per-stage result counts as summary.json.
func (c *Chain) writeSummary() error {
	stats := map[string]int{
		"subdomains":    countLines(c.path(subfinderOutFile)),
		"resolved":      countLines(c.path(dnsxOutFile)),
		"ports":         countLines(c.path(naabuOutFile)),
		"http_services": countLines(c.path(httpxOutFile)),
		"endpoints":     countLines(c.path(katanaOutFile)),
		"burp_import":   countLines(c.path(burpOutFile)),
	}
	if c.Options.Gau {
		stats["historical_urls"] = countLines(c.path(gauOutFile))
	}

	summary := Summary{
		Target:    c.target(),
		Timestamp: time.Now().Format(time.RFC3339),
		Stats:     stats,
	}

	data, err := json.MarshalIndent(summary, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path(summaryFile), data, 0644); err != nil {
		return fmt.Errorf("could not write summary: %w", err)
	}
	return nil
}

// target names the run for the summary, mirroring what the user passed in.
func (c *Chain) target() string {
	switch {
	case c.Options.Domain != "":
		return c.Options.Domain
	case c.Options.List != "":
		return c.Options.List
	default:
		return c.Options.ScopeFile
	}
}

// writeLLMPrompt dumps up to llmPromptMaxURLs crawled endpoints into a triage
// prompt for offline analysis. Nothing is written when the crawl found
// nothing.
func (c *Chain) writeLLMPrompt() error {
	endpoints, err := readLines(c.path(katanaOutFile))
	if err != nil || len(endpoints) == 0 {
		return err
	}
	if len(endpoints) > llmPromptMaxURLs {
		endpoints = endpoints[:llmPromptMaxURLs]
	}

	list, err := json.MarshalIndent(endpoints, "", "  ")
	if err != nil {
		return err
	}
	prompt := fmt.Sprintf("Analyze these URLs and find high-risk endpoints:\n%s\n", list)
	if err := os.WriteFile(c.path(llmPromptFile), []byte(prompt), 0644); err != nil {
		return fmt.Errorf("could not write llm prompt: %w", err)
	}
	gologger.Info().Msgf("llm prompt written to %s", c.path(llmPromptFile))
	return nil
}

// countLines returns the number of non-empty lines; missing files count zero.
func countLines(path string) int {
	if !fileutil.FileExists(path) {
		return 0
	}
	lines, err := fileutil.ReadFile(path)
	if err != nil {
		return 0
	}
	n := 0
	for line := range lines {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
