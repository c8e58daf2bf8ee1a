package providers

import (
	"testing"

	"github.com/seenimoa/treasurycurve/internal/provider"
)

func TestRegisterAllToWithoutFREDKey(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, ""); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	// Treasury.gov needs no key and is always registered.
	tp, err := reg.Get("treasury")
	if err != nil {
		t.Fatalf("treasury not registered: %v", err)
	}
	if tp.Info().Name != "treasury" {
		t.Error("wrong treasury provider name")
	}

	if _, err := reg.Get("federal_reserve"); err != nil {
		t.Errorf("federal_reserve not registered: %v", err)
	}

	// FRED falls back to the keyless CSV download and stays the default.
	if _, err := reg.Get("fred"); err != nil {
		t.Errorf("fred not registered without an API key: %v", err)
	}

	def, ok := reg.DefaultProvider(provider.ModelTreasuryYieldPanel)
	if !ok || def != "fred" {
		t.Errorf("default provider: got %q, want fred", def)
	}
}

func TestRegisterAllToWithFREDKey(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, "test-key-123456"); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	names := reg.ProvidersFor(provider.ModelTreasuryYieldPanel)
	if len(names) != 3 || names[0] != "fred" {
		t.Fatalf("yield panel providers: got %v, want fred, treasury, federal_reserve", names)
	}
	def, _ := reg.DefaultProvider(provider.ModelTreasuryYieldPanel)
	if def != "fred" {
		t.Errorf("default provider: got %q, want fred", def)
	}
}
