package main

import (
	"fmt"

	"github.com/papercat/papercat/internal/apiclient"
	"github.com/papercat/papercat/internal/config"
	"github.com/papercat/papercat/internal/crossref"
	"github.com/papercat/papercat/internal/integrate"
	"github.com/papercat/papercat/internal/openaire"
	"github.com/papercat/papercat/internal/openalex"
	"github.com/papercat/papercat/internal/pwc"
	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

// adapterSettings carries everything adapter construction reads from config
// and the environment.
type adapterSettings struct {
	Mailto         string
	OpenAlexAPIKey string
	RPS            float64 // 0 keeps each source's default
	CodeIndexPath  string
}

func loadAdapterSettings(repoRoot string, cfg *config.Config) adapterSettings {
	return adapterSettings{
		Mailto:         config.GetMailto(cfg),
		OpenAlexAPIKey: config.GetOpenAlexAPIKey(),
		RPS:            config.GetRequestsPerSecond(),
		CodeIndexPath:  cfg.ResolveCodeIndexPath(repoRoot),
	}
}

// pipelineOrder returns the configured source order, or the default.
func pipelineOrder(cfg *config.Config) ([]record.Source, error) {
	order, err := cfg.PipelineSources()
	if err != nil {
		return nil, err
	}
	if order == nil {
		order = integrate.DefaultOrder
	}
	return order, nil
}

// buildRegistry constructs the adapters named by the repository config.
func buildRegistry(order []record.Source, s adapterSettings) (integrate.Registry, error) {
	adapters := make([]source.Adapter, 0, len(order))
	for _, src := range order {
		a, err := newAdapter(src, s)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return integrate.NewRegistry(adapters...)
}

func newAdapter(src record.Source, s adapterSettings) (source.Adapter, error) {
	rate := func(def float64) float64 {
		if s.RPS > 0 {
			return s.RPS
		}
		return def
	}

	switch src {
	case record.SourceCrossref:
		return crossref.NewClient(
			crossref.WithMailto(s.Mailto),
			crossref.WithAPIOptions(apiclient.WithRateLimit(rate(crossref.RateLimit))),
		), nil
	case record.SourceOpenAIRE:
		return openaire.NewClient(
			openaire.WithAPIClient(apiclient.New("openaire", apiclient.WithRateLimit(rate(openaire.RateLimit)))),
		), nil
	case record.SourceOpenAlex:
		return openalex.NewClient(
			openalex.WithMailto(s.Mailto),
			openalex.WithAPIKey(s.OpenAlexAPIKey),
			openalex.WithAPIClient(apiclient.New("openalex", apiclient.WithRateLimit(rate(openalex.RateLimit)))),
		), nil
	case record.SourcePapersWithCode:
		return pwc.New(s.CodeIndexPath), nil
	}
	return nil, fmt.Errorf("source %q has no adapter", src)
}

// mustBuildRegistry builds the pipeline for a repository, exits on error.
func mustBuildRegistry(repoRoot string, cfg *config.Config) integrate.Registry {
	order, err := pipelineOrder(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "invalid sources: %v", err)
	}
	reg, err := buildRegistry(order, loadAdapterSettings(repoRoot, cfg))
	if err != nil {
		exitWithError(ExitConfigError, "building pipeline: %v", err)
	}
	return reg
}
