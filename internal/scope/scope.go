// Package scope decides which discovered targets the chain may keep.
//
// Rule file format, one rule per line:
//
//	*.example.com          # all subdomains of example.com
//	api.otherdomain.com    # exact host
//	!admin.example.com     # exclude this host ("-" prefix also accepted)
//	10.0.0.1               # single IP
//	192.168.1.0/24         # CIDR range
package scope

import (
	"fmt"
	"net"
	"strings"

	fileutil "github.com/projectdiscovery/utils/file"
)

type rule struct {
	pattern string
	exclude bool
	ip      net.IP
	cidr    *net.IPNet
}

// Scope is an ordered rule set. Exclusions always win over inclusions.
type Scope struct {
	rules []rule
}

// FromDomains builds a scope that covers each given domain and all of its
// subdomains, which is what a plain -d/-l run means.
func FromDomains(domains []string) *Scope {
	s := &Scope{}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		s.addLine("*." + strings.TrimPrefix(d, "*."))
	}
	return s
}

// Load parses a scope rule file.
func Load(path string) (*Scope, error) {
	lines, err := fileutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read scope file: %w", err)
	}

	s := &Scope{}
	for line := range lines {
		s.addLine(line)
	}

	if len(s.includes()) == 0 {
		return nil, fmt.Errorf("scope file %s contains no inclusion rules", path)
	}
	return s, nil
}

func (s *Scope) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	if idx := strings.Index(line, " #"); idx != -1 {
		line = strings.TrimSpace(line[:idx])
	}

	r := rule{pattern: line}
	switch {
	case strings.HasPrefix(line, "!"):
		r.exclude = true
		r.pattern = strings.TrimPrefix(line, "!")
	case strings.HasPrefix(line, "-"):
		r.exclude = true
		r.pattern = strings.TrimPrefix(line, "-")
	}
	r.pattern = strings.ToLower(r.pattern)

	if _, cidr, err := net.ParseCIDR(r.pattern); err == nil {
		r.cidr = cidr
	} else if ip := net.ParseIP(r.pattern); ip != nil {
		r.ip = ip
	}

	s.rules = append(s.rules, r)
}

func (s *Scope) includes() []rule {
	var in []rule
	for _, r := range s.rules {
		if !r.exclude {
			in = append(in, r)
		}
	}
	return in
}

// IsInScope reports whether a target (host, URL or IP) is allowed.
func (s *Scope) IsInScope(target string) bool {
	target = normalize(target)
	targetIP := net.ParseIP(target)

	for _, r := range s.rules {
		if r.exclude && r.match(target, targetIP) {
			return false
		}
	}
	for _, r := range s.rules {
		if !r.exclude && r.match(target, targetIP) {
			return true
		}
	}
	return false
}

// Filter returns only the in-scope entries of hosts, preserving order.
func (s *Scope) Filter(hosts []string) []string {
	var kept []string
	for _, h := range hosts {
		if s.IsInScope(h) {
			kept = append(kept, h)
		}
	}
	return kept
}

// Domains returns the root domains of the inclusion rules. Wildcards are
// stripped ("*.example.com" yields "example.com"); IP and CIDR rules are
// skipped.
func (s *Scope) Domains() []string {
	seen := map[string]bool{}
	var domains []string
	for _, r := range s.includes() {
		if r.ip != nil || r.cidr != nil {
			continue
		}
		d := strings.TrimPrefix(r.pattern, "*.")
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}
	return domains
}

// IPs returns the IP and CIDR inclusion rules verbatim. They are fed to the
// port scan stage as extra targets.
func (s *Scope) IPs() []string {
	var ips []string
	for _, r := range s.includes() {
		if r.ip != nil || r.cidr != nil {
			ips = append(ips, r.pattern)
		}
	}
	return ips
}

// HasWildcard reports whether the scope covers subdomains of domain, which is
// the precondition for running subdomain enumeration against it.
func (s *Scope) HasWildcard(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	for _, r := range s.includes() {
		if !strings.HasPrefix(r.pattern, "*.") {
			continue
		}
		base := r.pattern[2:]
		if domain == base || strings.HasSuffix(domain, "."+base) {
			return true
		}
	}
	return false
}

// String renders the rule set for operator display.
func (s *Scope) String() string {
	var sb strings.Builder
	sb.WriteString("Scope:\n")
	for _, r := range s.rules {
		sign := "+"
		if r.exclude {
			sign = "-"
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", sign, r.pattern))
	}
	return sb.String()
}

func (r rule) match(target string, targetIP net.IP) bool {
	if r.cidr != nil {
		return targetIP != nil && r.cidr.Contains(targetIP)
	}
	if r.ip != nil {
		return targetIP != nil && r.ip.Equal(targetIP)
	}
	return matchPattern(r.pattern, target)
}

// matchPattern matches a domain pattern against a target host. A wildcard
// pattern also matches its own base domain.
func matchPattern(pattern, target string) bool {
	if pattern == target {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		base := pattern[2:]
		return target == base || strings.HasSuffix(target, "."+base)
	}
	return false
}

// normalize reduces a URL or host:port spelling to a bare lowercase host.
func normalize(target string) string {
	target = strings.ToLower(strings.TrimSpace(target))

	if idx := strings.Index(target, "://"); idx != -1 {
		target = target[idx+3:]
	}
	if idx := strings.Index(target, "/"); idx != -1 {
		target = target[:idx]
	}
	if idx := strings.LastIndex(target, ":"); idx != -1 {
		// Keep IPv6 literals intact, only strip a real port suffix.
		if !strings.Contains(target[idx:], "]") {
			target = target[:idx]
		}
	}
	return strings.Trim(target, "[]")
}
