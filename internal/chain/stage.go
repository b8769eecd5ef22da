package chain

import "context"

// Stage is one link of the recon chain. Stages run strictly in the order
// returned by Stages; each consumes the file written by its predecessor.
type Stage interface {
	Name() string
	Description() string
	// OutputFile is the stage's hand-off file, relative to the output
	// directory.
	OutputFile() string
	// CommandLine is the argv of the equivalent external tool invocation.
	// -dry-run prints it, -exec executes it verbatim.
	CommandLine(c *Chain) []string
	// Run drives the stage through the tool's Go library, writing the same
	// output file the external binary would.
	Run(ctx context.Context, c *Chain) error
}

// Stage and report file names inside the output directory.
const (
	subfinderOutFile = "subfinder.txt"
	dnsxOutFile      = "dnsx.txt"
	naabuOutFile     = "naabu.txt"
	httpxOutFile     = "httpx.txt"
	httpxJSONFile    = "httpx.json"
	katanaInputFile  = "katana_input_clean.txt"
	katanaOutFile    = "katana.txt"
	gauOutFile       = "gau.txt"
	burpOutFile      = "urls_for_burp.txt"
	summaryFile      = "summary.json"
	llmPromptFile    = "llm_prompt.txt"
)

// Stages returns the chain's fixed stage order.
func Stages() []Stage {
	return []Stage{
		&subfinderStage{},
		&dnsxStage{},
		&naabuStage{},
		&httpxStage{},
		&katanaStage{},
	}
}
