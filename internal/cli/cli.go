// Package cli parses and validates the command line of the recon chain.
package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	fileutil "github.com/projectdiscovery/utils/file"
)

// Version of the recon chain.
const Version = "1.0.0"

// DefaultPorts is scanned by the naabu stage when -ports is not given.
const DefaultPorts = "80,443,8080,8443,8000,8008,8888"

// Options holds every knob of a chain run.
type Options struct {
	// Input
	Domain    string // single target domain (-d)
	List      string // file with target domains (-l)
	ScopeFile string // scope rule file (-scope)

	// Chain
	OutputDir  string // directory for stage output files
	Ports      string // port list for the naabu stage
	Proxy      string // http proxy injected into httpx and katana
	CrawlDepth int    // katana maximum depth
	DryRun     bool   // print command lines, execute nothing
	Exec       bool   // drive installed binaries instead of embedded libraries
	Gau        bool   // historical url enrichment after the chain
	LLMPrompt  bool   // write an llm triage prompt from endpoints

	// Tools
	InstallTools bool

	// Debug
	Silent  bool
	Verbose bool
	NoColor bool
	Version bool
}

// ParseOptions parses os.Args into Options and exits on invalid input.
func ParseOptions() *Options {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`Sequential reconnaissance chain: subfinder -> dnsx -> naabu -> httpx -> katana.
Each stage feeds its output file to the next; results are aggregated into summary.json.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Domain, "domain", "d", "", "target domain to enumerate"),
		flagSet.StringVarP(&options.List, "list", "l", "", "file containing target domains, one per line"),
		flagSet.StringVarP(&options.ScopeFile, "scope", "s", "", "scope file with wildcard and exclusion rules"),
	)

	flagSet.CreateGroup("chain", "Chain",
		flagSet.StringVarP(&options.OutputDir, "output", "o", "recon_results", "directory for stage output files"),
		flagSet.StringVarP(&options.Ports, "ports", "p", DefaultPorts, "ports passed to the naabu stage"),
		flagSet.StringVar(&options.Proxy, "proxy", "", "http proxy for the httpx and katana stages (e.g. http://127.0.0.1:8080)"),
		flagSet.IntVar(&options.CrawlDepth, "depth", 2, "maximum crawl depth for the katana stage"),
		flagSet.BoolVar(&options.DryRun, "dry-run", false, "print the constructed command lines without executing"),
		flagSet.BoolVar(&options.Exec, "exec", false, "run the installed external binaries instead of the embedded libraries"),
		flagSet.BoolVar(&options.Gau, "gau", false, "enrich endpoints with historical urls from gau"),
		flagSet.BoolVar(&options.LLMPrompt, "llm", false, "write an llm triage prompt from discovered endpoints"),
	)

	flagSet.CreateGroup("tools", "Tools",
		flagSet.BoolVar(&options.InstallTools, "install-tools", false, "install missing external binaries via go install and exit"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results and fatal errors"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "verbose output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable colored output"),
		flagSet.BoolVar(&options.Version, "version", false, "print version and exit"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("could not parse flags: %s", err)
	}

	options.configureLogger()

	if options.Version {
		gologger.Info().Msgf("Current version: v%s", Version)
		os.Exit(0)
	}

	if options.InstallTools {
		// No target needed, the run stops after provisioning.
		return options
	}

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("invalid options: %s", err)
	}

	return options
}

func (o *Options) configureLogger() {
	if o.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if o.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if o.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (o *Options) validate() error {
	if o.Domain == "" && o.List == "" && o.ScopeFile == "" {
		return errors.New("no target provided, use -d, -l or -scope")
	}
	if o.Domain != "" && o.List != "" {
		return errors.New("-d and -l are mutually exclusive")
	}
	if o.List != "" && !fileutil.FileExists(o.List) {
		return fmt.Errorf("domain list file %s does not exist", o.List)
	}
	if o.ScopeFile != "" && !fileutil.FileExists(o.ScopeFile) {
		return fmt.Errorf("scope file %s does not exist", o.ScopeFile)
	}
	if o.Ports == "" {
		return errors.New("port list cannot be empty")
	}
	if o.CrawlDepth < 1 {
		return errors.New("crawl depth must be at least 1")
	}
	if o.Proxy != "" {
		u, err := url.Parse(o.Proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy url: %s", o.Proxy)
		}
	}
	return nil
}
