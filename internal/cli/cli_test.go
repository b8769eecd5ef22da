package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validOptions() *Options {
	return &Options{
		Domain:     "example.com",
		OutputDir:  "recon_results",
		Ports:      DefaultPorts,
		CrawlDepth: 2,
	}
}

func TestValidateRequiresTarget(t *testing.T) {
	o := validOptions()
	o.Domain = ""
	err := o.validate()
	if err == nil || !strings.Contains(err.Error(), "no target") {
		t.Errorf("expected missing target error, got: %v", err)
	}
}

func TestValidateDomainAndListExclusive(t *testing.T) {
	o := validOptions()
	o.List = createTempFile(t, "domains.txt", "example.com\n")
	err := o.validate()
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("expected mutual exclusion error, got: %v", err)
	}
}

func TestValidateMissingListFile(t *testing.T) {
	o := validOptions()
	o.Domain = ""
	o.List = filepath.Join(t.TempDir(), "nope.txt")
	err := o.validate()
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected missing file error, got: %v", err)
	}
}

func TestValidateScopeFileAlone(t *testing.T) {
	o := validOptions()
	o.Domain = ""
	o.ScopeFile = createTempFile(t, "scope.txt", "*.example.com\n")
	if err := o.validate(); err != nil {
		t.Errorf("scope file alone should be a valid target source: %v", err)
	}
}

func TestValidateProxy(t *testing.T) {
	tests := []struct {
		proxy string
		ok    bool
	}{
		{"", true},
		{"http://127.0.0.1:8080", true},
		{"socks5://127.0.0.1:1080", true},
		{"not a url", false},
		{"127.0.0.1:8080", false}, // missing scheme
	}

	for _, tt := range tests {
		o := validOptions()
		o.Proxy = tt.proxy
		err := o.validate()
		if (err == nil) != tt.ok {
			t.Errorf("validate proxy %q: got err=%v, want ok=%v", tt.proxy, err, tt.ok)
		}
	}
}

func TestValidateCrawlDepth(t *testing.T) {
	o := validOptions()
	o.CrawlDepth = 0
	if err := o.validate(); err == nil {
		t.Error("expected error for zero crawl depth")
	}
}

func TestValidateEmptyPorts(t *testing.T) {
	o := validOptions()
	o.Ports = ""
	if err := o.validate(); err == nil {
		t.Error("expected error for empty port list")
	}
}
