package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"

	"github.com/J0sephhx/SubDomain-Enum/internal/chain"
	"github.com/J0sephhx/SubDomain-Enum/internal/cli"
	"github.com/J0sephhx/SubDomain-Enum/internal/tools"
)

func main() {
	options := cli.ParseOptions()

	if options.InstallTools {
		if err := tools.InstallMissing(); err != nil {
			gologger.Fatal().Msgf("tool installation failed: %s", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := chain.New(options)
	if err != nil {
		gologger.Fatal().Msgf("could not initialise recon chain: %s", err)
	}

	if err := c.Run(ctx); err != nil {
		gologger.Fatal().Msgf("recon chain failed: %s", err)
	}
}
