package chain

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/miekg/dns"
	"github.com/projectdiscovery/dnsx/libs/dnsx"
)

const dnsxWorkers = 25

// dnsxStage drops every enumerated host that does not resolve, so the port
// scan only sees live DNS names.
type dnsxStage struct{}

func (s *dnsxStage) Name() string        { return "dnsx" }
func (s *dnsxStage) Description() string { return "dns resolution filtering" }
func (s *dnsxStage) OutputFile() string  { return dnsxOutFile }

func (s *dnsxStage) CommandLine(c *Chain) []string {
	return []string{"dnsx", "-silent", "-l", c.path(subfinderOutFile), "-o", c.path(dnsxOutFile)}
}

func (s *dnsxStage) Run(ctx context.Context, c *Chain) error {
	hosts, err := readLines(c.path(subfinderOutFile))
	if err != nil {
		return err
	}

	out, err := os.Create(c.path(dnsxOutFile))
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer out.Close()

	opts := dnsx.DefaultOptions
	opts.MaxRetries = 2
	opts.QuestionTypes = []uint16{dns.TypeA, dns.TypeAAAA}

	client, err := dnsx.New(opts)
	if err != nil {
		return fmt.Errorf("could not create dnsx client: %w", err)
	}

	jobs := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < dnsxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range jobs {
				ips, err := client.Lookup(host)
				if err != nil || len(ips) == 0 {
					continue
				}
				mu.Lock()
				fmt.Fprintln(out, host)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, host := range hosts {
		select {
		case jobs <- host:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}
