package quotes

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// Provider prices one kind of instrument.
type Provider interface {
	Kind() models.QuoteKind
	Fetch(ctx context.Context, ticker string) (*models.Quote, error)
}

const (
	DefaultBrapiURL      = "https://brapi.dev"
	DefaultCoinGeckoURL  = "https://api.coingecko.com"
	DefaultAwesomeAPIURL = "https://economia.awesomeapi.com.br"
)

// Brapi quotes B3 listed stocks and funds.
type Brapi struct {
	c *client
}

func NewBrapi(opts ...ClientOption) *Brapi {
	return &Brapi{c: newClient("brapi", DefaultBrapiURL, opts)}
}

func (p *Brapi) Kind() models.QuoteKind { return models.QuoteStock }

type brapiResponse struct {
	Results []struct {
		Symbol                     string  `json:"symbol"`
		ShortName                  string  `json:"shortName"`
		LongName                   string  `json:"longName"`
		RegularMarketPrice         *number `json:"regularMarketPrice"`
		RegularMarketChangePercent number  `json:"regularMarketChangePercent"`
	} `json:"results"`
}

func (p *Brapi) Fetch(ctx context.Context, ticker string) (*models.Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrUnsupported
	}
	query := url.Values{
		"range":       {"1d"},
		"interval":    {"1d"},
		"fundamental": {"false"},
	}

	var resp brapiResponse
	if err := p.c.getJSON(ctx, "/api/quote/"+url.PathEscape(ticker), query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 || resp.Results[0].RegularMarketPrice == nil {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoQuote)
	}

	r := resp.Results[0]
	symbol := strings.ToUpper(r.Symbol)
	if symbol == "" {
		symbol = ticker
	}
	change := float64(r.RegularMarketChangePercent)
	return &models.Quote{
		Symbol:        symbol,
		Name:          firstNonEmpty(r.ShortName, r.LongName),
		Price:         float64(*r.RegularMarketPrice),
		ChangePercent: &change,
		Type:          models.QuoteStock,
	}, nil
}

// CoinGecko quotes crypto assets in BRL.
type CoinGecko struct {
	c *client
}

// coinIDs maps tickers to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
}

func NewCoinGecko(opts ...ClientOption) *CoinGecko {
	return &CoinGecko{c: newClient("coingecko", DefaultCoinGeckoURL, opts)}
}

func (p *CoinGecko) Kind() models.QuoteKind { return models.QuoteCrypto }

func (p *CoinGecko) Fetch(ctx context.Context, ticker string) (*models.Quote, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	id, ok := coinIDs[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, ErrUnsupported)
	}

	var resp map[string]map[string]*number
	query := url.Values{"ids": {id}, "vs_currencies": {"brl"}}
	if err := p.c.getJSON(ctx, "/api/v3/simple/price", query, &resp); err != nil {
		return nil, err
	}
	price := resp[id]["brl"]
	if price == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoQuote)
	}

	name := strings.ToUpper(id[:1]) + id[1:]
	return &models.Quote{
		Symbol: symbol,
		Name:   &name,
		Price:  float64(*price),
		Type:   models.QuoteCrypto,
	}, nil
}

// AwesomeAPI quotes currency pairs such as USD-BRL.
type AwesomeAPI struct {
	c *client
}

func NewAwesomeAPI(opts ...ClientOption) *AwesomeAPI {
	return &AwesomeAPI{c: newClient("awesomeapi", DefaultAwesomeAPIURL, opts)}
}

func (p *AwesomeAPI) Kind() models.QuoteKind { return models.QuoteFX }

type awesomeQuote struct {
	Name      string  `json:"name"`
	Bid       *number `json:"bid"`
	PctChange number  `json:"pctChange"`
}

func (p *AwesomeAPI) Fetch(ctx context.Context, pair string) (*models.Quote, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" {
		return nil, ErrUnsupported
	}

	var resp map[string]awesomeQuote
	if err := p.c.getJSON(ctx, "/last/"+url.PathEscape(pair), nil, &resp); err != nil {
		return nil, err
	}
	q, ok := resp[strings.ReplaceAll(pair, "-", "")]
	if !ok || q.Bid == nil {
		return nil, fmt.Errorf("%s: %w", pair, ErrNoQuote)
	}

	change := float64(q.PctChange)
	return &models.Quote{
		Symbol:        strings.ReplaceAll(pair, "-", "/"),
		Name:          firstNonEmpty(q.Name),
		Price:         float64(*q.Bid),
		ChangePercent: &change,
		Type:          models.QuoteFX,
	}, nil
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}
