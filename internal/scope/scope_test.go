package scope

import (
	"os"
	"path/filepath"
	"testing"
)

func createTempScopeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scope.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWildcardInclusion(t *testing.T) {
	path := createTempScopeFile(t, "*.example.com\n")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target string
		want   bool
	}{
		{"example.com", true},
		{"sub.example.com", true},
		{"deep.sub.example.com", true},
		{"notexample.com", false},
		{"example.com.evil.com", false},
		{"other.com", false},
	}

	for _, tt := range tests {
		if got := s.IsInScope(tt.target); got != tt.want {
			t.Errorf("IsInScope(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestExactInclusion(t *testing.T) {
	path := createTempScopeFile(t, "api.example.com\n")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target string
		want   bool
	}{
		{"api.example.com", true},
		{"API.EXAMPLE.COM", true}, // case insensitive
		{"other.example.com", false},
		{"example.com", false},
	}

	for _, tt := range tests {
		if got := s.IsInScope(tt.target); got != tt.want {
			t.Errorf("IsInScope(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestExclusionsWin(t *testing.T) {
	content := `*.example.com
-admin.example.com
!*.staging.example.com
`
	path := createTempScopeFile(t, content)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target string
		want   bool
	}{
		{"www.example.com", true},
		{"admin.example.com", false},
		{"staging.example.com", false},
		{"db.staging.example.com", false},
	}

	for _, tt := range tests {
		if got := s.IsInScope(tt.target); got != tt.want {
			t.Errorf("IsInScope(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestIPAndCIDRRules(t *testing.T) {
	content := `192.168.1.0/24
10.0.0.1
-192.168.1.5
`
	path := createTempScopeFile(t, content)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target string
		want   bool
	}{
		{"192.168.1.10", true},
		{"192.168.1.5", false},
		{"192.168.2.1", false},
		{"10.0.0.1", true},
		{"10.0.0.2", false},
	}

	for _, tt := range tests {
		if got := s.IsInScope(tt.target); got != tt.want {
			t.Errorf("IsInScope(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}

	ips := s.IPs()
	if len(ips) != 2 {
		t.Errorf("IPs() = %v, want 2 inclusion entries", ips)
	}
}

func TestNormalizeURLAndPort(t *testing.T) {
	path := createTempScopeFile(t, "*.example.com\n")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target string
		want   bool
	}{
		{"https://www.example.com/login", true},
		{"http://example.com:8080", true},
		{"www.example.com:443", true},
		{"https://evil.com/?q=example.com", false},
	}

	for _, tt := range tests {
		if got := s.IsInScope(tt.target); got != tt.want {
			t.Errorf("IsInScope(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestDomains(t *testing.T) {
	content := `*.example.com
api.specific.org
*.example.com      # duplicate
10.0.0.1
`
	path := createTempScopeFile(t, content)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	domains := s.Domains()
	if len(domains) != 2 {
		t.Fatalf("Domains() = %v, want 2 entries", domains)
	}
	if domains[0] != "example.com" || domains[1] != "api.specific.org" {
		t.Errorf("Domains() = %v, want [example.com api.specific.org]", domains)
	}
}

func TestFromDomains(t *testing.T) {
	s := FromDomains([]string{"example.com", "Other.ORG", ""})

	if !s.IsInScope("sub.example.com") {
		t.Error("FromDomains should cover subdomains")
	}
	if !s.IsInScope("other.org") {
		t.Error("FromDomains should lowercase and cover the root domain")
	}
	if s.IsInScope("unrelated.net") {
		t.Error("FromDomains should not cover unrelated domains")
	}
	if !s.HasWildcard("example.com") {
		t.Error("FromDomains should produce wildcard scope")
	}
}

func TestHasWildcard(t *testing.T) {
	path := createTempScopeFile(t, "*.example.com\napi.specific.org\n")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if !s.HasWildcard("example.com") {
		t.Error("expected wildcard for example.com")
	}
	if !s.HasWildcard("sub.example.com") {
		t.Error("expected wildcard to cover sub.example.com")
	}
	if s.HasWildcard("api.specific.org") {
		t.Error("exact rule must not count as wildcard")
	}
}

func TestLoadRejectsExcludeOnlyScope(t *testing.T) {
	path := createTempScopeFile(t, "# nothing included\n-admin.example.com\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for scope without inclusion rules")
	}
}

func TestFilter(t *testing.T) {
	s := FromDomains([]string{"example.com"})
	hosts := []string{"a.example.com", "evil.com", "b.example.com"}
	kept := s.Filter(hosts)
	if len(kept) != 2 || kept[0] != "a.example.com" || kept[1] != "b.example.com" {
		t.Errorf("Filter() = %v, want in-scope hosts in order", kept)
	}
}
