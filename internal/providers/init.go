// Package providers initializes and registers the concrete yield data
// providers with a provider registry.
package providers

import (
	"github.com/seenimoa/treasurycurve/internal/provider"
	"github.com/seenimoa/treasurycurve/internal/providers/federalreserve"
	"github.com/seenimoa/treasurycurve/internal/providers/fred"
	"github.com/seenimoa/treasurycurve/internal/providers/treasury"
)

// RegisterAllTo registers all available providers to the given registry.
// FRED is registered first and is the default yield panel provider; without
// an API key it reads the public CSV download.
func RegisterAllTo(reg *provider.Registry, fredAPIKey string) error {
	// --- FRED (API key optional) ---
	fp := fred.New()
	if err := fp.Init(map[string]string{"api_key": fredAPIKey}); err != nil {
		return err
	}
	if err := reg.Register(fp); err != nil {
		return err
	}

	// --- Treasury.gov (free, no API key) ---
	tp := treasury.New()
	if err := tp.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(tp); err != nil {
		return err
	}

	// --- Federal Reserve H.15 (free, no API key) ---
	fr := federalreserve.New()
	if err := fr.Init(nil); err != nil {
		return err
	}
	return reg.Register(fr)
}
