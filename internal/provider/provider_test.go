package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/treasurycurve/pkg/models"
)

// modelOther is a model no test provider registers by default.
const modelOther ModelType = "Other"

// mockFetcher implements the Fetcher interface for testing.
type mockFetcher struct {
	BaseFetcher
	fetchFn func(ctx context.Context, params QueryParams) (*FetchResult, error)
}

func newMockFetcher(model ModelType, required []string) *mockFetcher {
	return &mockFetcher{
		BaseFetcher: NewBaseFetcher(model, "mock fetcher for "+string(model), required, nil),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, params)
	}
	return &FetchResult{
		Data:      "mock-data",
		FetchedAt: time.Now(),
	}, nil
}

// mockProvider implements the Provider interface for testing.
type mockProvider struct {
	BaseProvider
}

func newMockProvider(name string, models ...ModelType) *mockProvider {
	mp := &mockProvider{
		BaseProvider: NewBaseProvider(name, "Mock "+name, "https://example.com", nil),
	}
	for _, m := range models {
		mp.RegisterFetcher(newMockFetcher(m, []string{ParamSymbol}))
	}
	return mp
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	p := newMockProvider("test-provider", ModelTreasuryYieldPanel)

	if err := p.Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-provider")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-provider" {
		t.Errorf("expected name test-provider, got %s", got.Info().Name)
	}
}

func TestRegistryRegisterEmptyName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newMockProvider("")); err == nil {
		t.Fatal("expected error for empty provider name")
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent provider")
	}
	if _, ok := err.(*ErrProviderNotFound); !ok {
		t.Errorf("expected ErrProviderNotFound, got %T", err)
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("treasury", ModelTreasuryYieldPanel))
	_ = reg.Register(newMockProvider("fred", ModelTreasuryYieldPanel))

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(list))
	}
	if list[0].Name != "fred" || list[1].Name != "treasury" {
		t.Errorf("expected [fred treasury], got [%s %s]", list[0].Name, list[1].Name)
	}
}

func TestRegistryProvidersFor(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", ModelTreasuryYieldPanel, modelOther))
	_ = reg.Register(newMockProvider("p2", ModelTreasuryYieldPanel))

	if provs := reg.ProvidersFor(ModelTreasuryYieldPanel); len(provs) != 2 {
		t.Fatalf("expected 2 providers for panel, got %d", len(provs))
	}
	if provs := reg.ProvidersFor(modelOther); len(provs) != 1 {
		t.Fatalf("expected 1 provider for Other, got %d", len(provs))
	}
	if provs := reg.ProvidersFor("Missing"); len(provs) != 0 {
		t.Fatalf("expected 0 providers for Missing, got %d", len(provs))
	}
}

func TestRegistrySetDefault(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("fred", ModelTreasuryYieldPanel))
	_ = reg.Register(newMockProvider("treasury", ModelTreasuryYieldPanel))

	def, ok := reg.DefaultProvider(ModelTreasuryYieldPanel)
	if !ok || def != "fred" {
		t.Errorf("expected default fred, got %s (ok=%v)", def, ok)
	}

	if err := reg.SetDefault(ModelTreasuryYieldPanel, "treasury"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	def, ok = reg.DefaultProvider(ModelTreasuryYieldPanel)
	if !ok || def != "treasury" {
		t.Errorf("expected default treasury, got %s (ok=%v)", def, ok)
	}

	if err := reg.SetDefault(ModelTreasuryYieldPanel, "nope"); err == nil {
		t.Error("expected error setting default to non-existent provider")
	}
	if err := reg.SetDefault(modelOther, "fred"); err == nil {
		t.Error("expected error setting default for unsupported model")
	}
}

func TestRegistryFetch(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("test", ModelTreasuryYieldPanel))

	result, err := reg.Fetch(context.Background(), ModelTreasuryYieldPanel, QueryParams{ParamSymbol: "10y"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Provider != "test" {
		t.Errorf("expected provider 'test', got %s", result.Provider)
	}
	if result.Model != ModelTreasuryYieldPanel {
		t.Errorf("expected model TreasuryYieldPanel, got %s", result.Model)
	}
	if result.Data != "mock-data" {
		t.Errorf("unexpected data: %v", result.Data)
	}
}

func TestRegistryFetchMissingParam(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("test", ModelTreasuryYieldPanel))

	_, err := reg.Fetch(context.Background(), ModelTreasuryYieldPanel, QueryParams{})
	if err == nil {
		t.Fatal("expected error for missing param")
	}
	if _, ok := err.(*ErrMissingParam); !ok {
		t.Errorf("expected ErrMissingParam, got %T: %v", err, err)
	}
}

func TestRegistryFetchUnsupportedModel(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("test", ModelTreasuryYieldPanel))

	_, err := reg.Fetch(context.Background(), modelOther, QueryParams{ParamSymbol: "10y", ParamProvider: "test"})
	var mns *ErrModelNotSupported
	if !errors.As(err, &mns) {
		t.Fatalf("expected ErrModelNotSupported, got %T: %v", err, err)
	}
}

func TestRegistryFetchWithProviderOverride(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("fred", ModelTreasuryYieldPanel))

	mp2 := newMockProvider("treasury", ModelTreasuryYieldPanel)
	f := newMockFetcher(ModelTreasuryYieldPanel, []string{ParamSymbol})
	f.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		return &FetchResult{Data: "from-treasury"}, nil
	}
	mp2.BaseProvider.fetchers[ModelTreasuryYieldPanel] = f
	_ = reg.Register(mp2)

	params := QueryParams{
		ParamSymbol:   "10y",
		ParamProvider: "treasury",
	}
	result, err := reg.Fetch(context.Background(), ModelTreasuryYieldPanel, params)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Data != "from-treasury" {
		t.Errorf("expected data from treasury, got %v", result.Data)
	}
	if result.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be stamped")
	}
}

func TestRegistryFetchWrapsError(t *testing.T) {
	reg := NewRegistry()
	mp := newMockProvider("fred")
	f := newMockFetcher(ModelTreasuryYieldPanel, nil)
	boom := errors.New("boom")
	f.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		return nil, boom
	}
	mp.RegisterFetcher(f)
	_ = reg.Register(mp)

	_, err := reg.Fetch(context.Background(), ModelTreasuryYieldPanel, QueryParams{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if !strings.Contains(err.Error(), `provider "fred"`) {
		t.Errorf("error should name the provider: %v", err)
	}
}

// --- Base Provider Tests ---

func TestBaseProviderInit(t *testing.T) {
	creds := []ProviderCredential{
		{Name: "api_key", Required: true, EnvVar: "FRED_API_KEY"},
	}
	bp := NewBaseProvider("test", "desc", "https://test.com", creds)

	if err := bp.Init(map[string]string{}); err == nil {
		t.Error("expected error for missing required credential")
	}

	if err := bp.Init(map[string]string{"api_key": "secret123"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if bp.Credential("api_key") != "secret123" {
		t.Error("credential not stored")
	}
}

func TestBaseProviderRegisterFetcher(t *testing.T) {
	bp := NewBaseProvider("test", "desc", "https://test.com", nil)
	bp.RegisterFetcher(newMockFetcher(ModelTreasuryYieldPanel, nil))

	if bp.Fetcher(ModelTreasuryYieldPanel) == nil {
		t.Error("fetcher not registered")
	}
	if bp.Fetcher(modelOther) != nil {
		t.Error("fetcher should be nil for unregistered model")
	}
	if len(bp.Info().Models) != 1 {
		t.Errorf("expected 1 supported model, got %d", len(bp.Info().Models))
	}
}

func TestBaseFetcherZeroTTLDisablesCache(t *testing.T) {
	f := NewBaseFetcherWithOpts(ModelTreasuryYieldPanel, "panel", nil, nil, 0, 5, time.Second)
	f.CacheSet("k", 1)
	if _, ok := f.CacheGet("k"); ok {
		t.Error("zero TTL cache should not retain values")
	}
	f.CacheSetTTL("k", 1, time.Minute)
	if _, ok := f.CacheGet("k"); !ok {
		t.Error("explicit TTL should be honoured")
	}
}

// --- CacheKey Tests ---

func TestCacheKey(t *testing.T) {
	params := QueryParams{
		ParamSymbol:    "1mo,10y",
		ParamStartDate: "2024-01-01",
		ParamProvider:  "fred",
	}

	key := CacheKey(ModelTreasuryYieldPanel, params)
	want := "TreasuryYieldPanel:start_date=2024-01-01:symbol=1mo,10y"
	if key != want {
		t.Errorf("CacheKey = %q, want %q", key, want)
	}
}

// --- ValidateParams Tests ---

func TestValidateParams(t *testing.T) {
	if err := ValidateParams(QueryParams{ParamSymbol: "10y"}, []string{ParamSymbol}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateParams(QueryParams{}, []string{ParamSymbol}); err == nil {
		t.Error("expected error for missing param")
	}
	if err := ValidateParams(QueryParams{ParamSymbol: ""}, []string{ParamSymbol}); err == nil {
		t.Error("expected error for empty param")
	}
}

// --- Model Tests ---

func TestAllModels(t *testing.T) {
	seen := make(map[ModelType]bool)
	for _, m := range AllModels() {
		if seen[m] {
			t.Errorf("duplicate model type: %s", m)
		}
		seen[m] = true
		if ModelCategory(m) == "Other" {
			t.Errorf("model %s has no category", m)
		}
	}
	if ModelCategory(ModelTreasuryYieldPanel) != "Fixed Income / Government" {
		t.Errorf("unexpected category %q", ModelCategory(ModelTreasuryYieldPanel))
	}
}

// --- PanelSource Tests ---

func TestPanelSourceFetch(t *testing.T) {
	reg := NewRegistry()
	mp := newMockProvider("fred")
	f := newMockFetcher(ModelTreasuryYieldPanel, []string{ParamSymbol})
	var got QueryParams
	f.fetchFn = func(ctx context.Context, params QueryParams) (*FetchResult, error) {
		got = params
		return &FetchResult{Data: &models.YieldPanel{Codes: SymbolList(params)}}, nil
	}
	mp.RegisterFetcher(f)
	_ = reg.Register(mp)

	src := NewPanelSource(reg, "")
	if src.Name() != "fred" {
		t.Errorf("expected default name fred, got %s", src.Name())
	}

	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	panel, err := src.FetchPanel(context.Background(), []string{"1mo", "10y"}, start, end)
	if err != nil {
		t.Fatalf("FetchPanel failed: %v", err)
	}
	if got[ParamSymbol] != "1mo,10y" || got[ParamStartDate] != "2020-01-02" || got[ParamEndDate] != "2024-06-03" {
		t.Errorf("unexpected params %v", got)
	}
	if panel.Source != "fred" {
		t.Errorf("expected source fred, got %q", panel.Source)
	}
	if len(panel.Codes) != 2 {
		t.Errorf("expected 2 codes, got %v", panel.Codes)
	}
}

func TestPanelSourceWrongType(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("fred", ModelTreasuryYieldPanel))

	_, err := NewPanelSource(reg, "fred").FetchPanel(context.Background(), []string{"10y"}, time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error for non-panel data")
	}
}

func TestPanelSourceUnknownProvider(t *testing.T) {
	reg := NewRegistry()
	src := NewPanelSource(reg, "")
	if src.Name() != "none" {
		t.Errorf("expected name none, got %s", src.Name())
	}
	_, err := src.FetchPanel(context.Background(), []string{"10y"}, time.Now(), time.Now())
	var pnf *ErrProviderNotFound
	if !errors.As(err, &pnf) {
		t.Fatalf("expected ErrProviderNotFound, got %T: %v", err, err)
	}
}

func TestSymbolList(t *testing.T) {
	got := SymbolList(QueryParams{ParamSymbol: " 1mo, ,10y "})
	if len(got) != 2 || got[0] != "1mo" || got[1] != "10y" {
		t.Errorf("SymbolList = %v", got)
	}
	if SymbolList(QueryParams{}) != nil {
		t.Error("expected nil for missing symbol")
	}
}

func TestDateRange(t *testing.T) {
	start, end, err := DateRange(QueryParams{ParamStartDate: "2023-01-01", ParamEndDate: "2023-12-31"})
	if err != nil {
		t.Fatalf("DateRange failed: %v", err)
	}
	if start.Format(DateLayout) != "2023-01-01" || end.Format(DateLayout) != "2023-12-31" {
		t.Errorf("unexpected range %v..%v", start, end)
	}

	start, end, err = DateRange(QueryParams{ParamEndDate: "2023-12-31"})
	if err != nil {
		t.Fatalf("DateRange failed: %v", err)
	}
	if start.Format(DateLayout) != "2022-12-31" {
		t.Errorf("default start = %s", start.Format(DateLayout))
	}
	_ = end

	if _, _, err := DateRange(QueryParams{ParamStartDate: "01/02/2023"}); err == nil {
		t.Error("expected error for bad date")
	}
	if _, _, err := DateRange(QueryParams{ParamStartDate: "2024-01-02", ParamEndDate: "2024-01-01"}); err == nil {
		t.Error("expected error for inverted range")
	}
}
