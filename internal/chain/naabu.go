package chain

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/projectdiscovery/goflags"
	naabu_result "github.com/projectdiscovery/naabu/v2/pkg/result"
	naabu_runner "github.com/projectdiscovery/naabu/v2/pkg/runner"
)

// naabuStage scans the resolved hosts, plus any IP or CIDR rules from the
// scope, for open ports. Connect scan only, no raw sockets needed.
type naabuStage struct{}

func (s *naabuStage) Name() string        { return "naabu" }
func (s *naabuStage) Description() string { return "port scanning" }
func (s *naabuStage) OutputFile() string  { return naabuOutFile }

func (s *naabuStage) CommandLine(c *Chain) []string {
	return []string{"naabu", "-silent", "-list", c.path(dnsxOutFile), "-p", c.Options.Ports, "-o", c.path(naabuOutFile)}
}

func (s *naabuStage) Run(ctx context.Context, c *Chain) error {
	hosts, err := readLines(c.path(dnsxOutFile))
	if err != nil {
		return err
	}
	hosts = append(hosts, c.Scope.IPs()...)

	out, err := os.Create(c.path(naabuOutFile))
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer out.Close()

	if len(hosts) == 0 {
		return nil
	}

	var mu sync.Mutex
	options := naabu_runner.Options{
		Host:     goflags.StringSlice(hosts),
		Ports:    c.Options.Ports,
		ScanType: "c",
		Silent:   true,
		OnResult: func(hr *naabu_result.HostResult) {
			mu.Lock()
			defer mu.Unlock()
			for _, p := range hr.Ports {
				fmt.Fprintf(out, "%s:%d\n", hr.Host, p.Port)
			}
		},
	}

	nr, err := naabu_runner.NewRunner(&options)
	if err != nil {
		return fmt.Errorf("could not create naabu runner: %w", err)
	}
	defer nr.Close()

	if err := nr.RunEnumeration(ctx); err != nil {
		return fmt.Errorf("port scan failed: %w", err)
	}
	return nil
}
