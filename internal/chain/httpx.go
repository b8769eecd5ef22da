package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/projectdiscovery/goflags"
	httpx_runner "github.com/projectdiscovery/httpx/runner"
)

// httpxStage probes the open ports for live web services. Besides the plain
// text hand-off file it keeps one compact JSON record per service.
type httpxStage struct{}

func (s *httpxStage) Name() string        { return "httpx" }
func (s *httpxStage) Description() string { return "http probing" }
func (s *httpxStage) OutputFile() string  { return httpxOutFile }

func (s *httpxStage) CommandLine(c *Chain) []string {
	argv := []string{"httpx", "-silent", "-l", c.path(naabuOutFile),
		"-title", "-tech-detect", "-status-code", "-o", c.path(httpxOutFile)}
	if c.Options.Proxy != "" {
		argv = append(argv, "-http-proxy", c.Options.Proxy)
	}
	return argv
}

func (s *httpxStage) Run(ctx context.Context, c *Chain) error {
	hosts, err := readLines(c.path(naabuOutFile))
	if err != nil {
		return err
	}

	out, err := os.Create(c.path(httpxOutFile))
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer out.Close()

	jsonOut, err := os.Create(c.path(httpxJSONFile))
	if err != nil {
		return fmt.Errorf("could not create json output file: %w", err)
	}
	defer jsonOut.Close()

	if len(hosts) == 0 {
		return nil
	}

	var mu sync.Mutex
	hxOptions := &httpx_runner.Options{
		InputTargetHost:    goflags.StringSlice(hosts),
		Silent:             true,
		DisableStdout:      true,
		DisableStdin:       true,
		Threads:            50,
		Timeout:            10,
		Retries:            0,
		RateLimit:          150,
		HostMaxErrors:      30,
		FollowRedirects:    true,
		MaxRedirects:       10,
		DisableUpdateCheck: true,
		NoColor:            true,
		RandomAgent:        true,
		TechDetect:         true,
		ExtractTitle:       true,
		HTTPProxy:          c.Options.Proxy,
		OnResult: func(r httpx_runner.Result) {
			if r.Err != nil {
				return
			}
			rec := probeFromResult(r)
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(out, probeLine(rec))
			if js, err := json.Marshal(rec); err == nil {
				fmt.Fprintln(jsonOut, string(js))
			}
		},
	}

	if err := hxOptions.ValidateOptions(); err != nil {
		return fmt.Errorf("options validation failed: %w", err)
	}

	hxRunner, err := httpx_runner.New(hxOptions)
	if err != nil {
		return fmt.Errorf("could not create httpx runner: %w", err)
	}

	hxRunner.RunEnumeration()
	hxRunner.Close()

	return ctx.Err()
}

// probeResult is the compact JSON record kept per live service.
type probeResult struct {
	URL        string   `json:"url"`
	Input      string   `json:"input"`
	Host       string   `json:"host"`
	Port       string   `json:"port,omitempty"`
	Scheme     string   `json:"scheme"`
	StatusCode int      `json:"status_code"`
	Title      string   `json:"title,omitempty"`
	Webserver  string   `json:"webserver,omitempty"`
	Tech       []string `json:"tech,omitempty"`
}

func probeFromResult(r httpx_runner.Result) probeResult {
	return probeResult{
		URL:        r.URL,
		Input:      r.Input,
		Host:       r.Host,
		Port:       r.Port,
		Scheme:     r.Scheme,
		StatusCode: r.StatusCode,
		Title:      r.Title,
		Webserver:  r.WebServer,
		Tech:       r.Technologies,
	}
}

// probeLine renders the hand-off line in httpx CLI style: the URL first,
// metadata bracketed after it. The katana input cleaner keeps only the URL.
func probeLine(r probeResult) string {
	var sb strings.Builder
	sb.WriteString(r.URL)
	fmt.Fprintf(&sb, " [%d]", r.StatusCode)
	if r.Title != "" {
		fmt.Fprintf(&sb, " [%s]", r.Title)
	}
	if len(r.Tech) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(r.Tech, ","))
	}
	return sb.String()
}
