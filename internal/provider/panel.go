package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/treasurycurve/pkg/models"
)

// DateLayout is the format of the start_date and end_date parameters.
const DateLayout = "2006-01-02"

// PanelSource routes yield panel requests through a Registry. It satisfies
// the yield fetcher's Source interface.
type PanelSource struct {
	registry *Registry
	provider string
}

// NewPanelSource returns a source that asks the named provider for panels.
// An empty name uses the registry default for ModelTreasuryYieldPanel.
func NewPanelSource(r *Registry, providerName string) *PanelSource {
	return &PanelSource{registry: r, provider: providerName}
}

// Name returns the provider that will serve the next request.
func (s *PanelSource) Name() string {
	if s.provider != "" {
		return s.provider
	}
	if name, ok := s.registry.DefaultProvider(ModelTreasuryYieldPanel); ok {
		return name
	}
	return "none"
}

// FetchPanel asks the provider for a panel of codes over [start, end].
func (s *PanelSource) FetchPanel(ctx context.Context, codes []string, start, end time.Time) (*models.YieldPanel, error) {
	params := QueryParams{
		ParamSymbol:    strings.Join(codes, ","),
		ParamStartDate: start.Format(DateLayout),
		ParamEndDate:   end.Format(DateLayout),
	}
	if s.provider != "" {
		params[ParamProvider] = s.provider
	}

	res, err := s.registry.Fetch(ctx, ModelTreasuryYieldPanel, params)
	if err != nil {
		return nil, err
	}
	panel, ok := res.Data.(*models.YieldPanel)
	if !ok || panel == nil {
		return nil, fmt.Errorf("provider %q returned %T, want *models.YieldPanel", res.Provider, res.Data)
	}
	if panel.Source == "" {
		panel.Source = res.Provider
	}
	if panel.FetchedAt.IsZero() {
		panel.FetchedAt = res.FetchedAt
	}
	return panel, nil
}

// SymbolList splits the comma separated symbol parameter.
func SymbolList(params QueryParams) []string {
	var out []string
	for _, s := range strings.Split(params[ParamSymbol], ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DateRange parses the start_date and end_date parameters. A missing end
// date means today; a missing start date means one year before the end.
func DateRange(params QueryParams) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if v := params[ParamEndDate]; v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid %s %q: %w", ParamEndDate, v, err)
		}
		end = t
	}
	start := end.AddDate(-1, 0, 0)
	if v := params[ParamStartDate]; v != "" {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid %s %q: %w", ParamStartDate, v, err)
		}
		start = t
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %s after end date %s",
			start.Format(DateLayout), end.Format(DateLayout))
	}
	return start, end, nil
}
