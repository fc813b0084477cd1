package delivery

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Registry maps provider names to implementations. Providers are
// registered at startup; lookups at request time are read-only.
type Registry struct {
	providers   map[string]Provider
	defaultName string
	logger      zerolog.Logger
}

func NewRegistry(defaultName string, logger zerolog.Logger) *Registry {
	return &Registry{
		providers:   make(map[string]Provider),
		defaultName: defaultName,
		logger:      logger,
	}
}

func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get resolves a provider by name; an empty name selects the default.
func (r *Registry) Get(name string) (Provider, error) {
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown delivery provider %q", name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompareQuotes queries every registered provider and returns the quotes
// sorted ascending by price. A failing provider is logged and omitted;
// it never fails the whole batch.
func (r *Registry) CompareQuotes(ctx context.Context, req *QuoteRequest) []Quote {
	quotes := make([]Quote, 0, len(r.providers))
	for _, name := range r.Names() {
		quote, err := r.providers[name].GetQuote(ctx, req)
		if err != nil {
			r.logger.Warn().Err(err).Str("provider", name).Msg("quote failed, omitting provider")
			continue
		}
		quotes = append(quotes, *quote)
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Price < quotes[j].Price })
	return quotes
}
