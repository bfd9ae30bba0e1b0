package quotes

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/atharvakonge/portfolio-ledger/internal/config"
	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// Batcher resolves a list of instruments to the quotes that could be found.
type Batcher interface {
	FetchAll(ctx context.Context, inputs []models.QuoteInput) []models.Quote
}

// Fetcher routes each input to the provider for its kind.
type Fetcher struct {
	providers     map[models.QuoteKind]Provider
	maxConcurrent int
	logger        *logging.Logger
}

var _ Batcher = (*Fetcher)(nil)

// NewFetcher builds a fetcher over providers. maxConcurrent bounds the number
// of lookups in flight per batch.
func NewFetcher(logger *logging.Logger, maxConcurrent int, providers ...Provider) *Fetcher {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}
	f := &Fetcher{
		providers:     make(map[models.QuoteKind]Provider, len(providers)),
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
	for _, p := range providers {
		f.providers[p.Kind()] = p
	}
	return f
}

// FromConfig wires the three public providers.
func FromConfig(cfg config.QuotesConfig, logger *logging.Logger) *Fetcher {
	opts := func(baseURL string) []ClientOption {
		return []ClientOption{
			WithBaseURL(baseURL),
			WithLogger(logger),
			WithRateLimit(cfg.RateLimit),
			WithTimeout(cfg.GetTimeout()),
		}
	}
	return NewFetcher(logger, cfg.MaxConcurrent,
		NewBrapi(opts(cfg.BrapiURL)...),
		NewCoinGecko(opts(cfg.CoinGeckoURL)...),
		NewAwesomeAPI(opts(cfg.AwesomeAPIURL)...),
	)
}

// FetchAll looks every input up concurrently and returns the successful
// quotes in input order. Failed lookups are logged and dropped.
func (f *Fetcher) FetchAll(ctx context.Context, inputs []models.QuoteInput) []models.Quote {
	results := make([]*models.Quote, len(inputs))

	var g errgroup.Group
	g.SetLimit(f.maxConcurrent)
	for i, in := range inputs {
		i, in := i, in
		p, ok := f.providers[in.Type]
		if !ok {
			f.logger.Warn().Str("ticker", in.Ticker).Str("type", string(in.Type)).Msg("No provider for quote type")
			continue
		}
		g.Go(func() error {
			q, err := p.Fetch(ctx, in.Ticker)
			if err != nil {
				f.logger.Warn().Err(err).Str("ticker", in.Ticker).Str("type", string(in.Type)).Msg("Quote lookup failed")
				return nil
			}
			results[i] = q
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.Quote, 0, len(inputs))
	for _, q := range results {
		if q != nil {
			out = append(out, *q)
		}
	}
	return out
}
