package provider

// ModelType names a standard data model. Each ModelType maps to a specific
// data structure in pkg/models/.
type ModelType string

// --- Fixed Income / Government ---
const (
	// ModelTreasuryYieldPanel is a date-indexed panel of constant maturity
	// Treasury yields. Fetch returns *models.YieldPanel.
	ModelTreasuryYieldPanel ModelType = "TreasuryYieldPanel"
)

// AllModels returns all defined model types.
func AllModels() []ModelType {
	return []ModelType{
		ModelTreasuryYieldPanel,
	}
}

// ModelCategory maps model types to their category for grouping.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelTreasuryYieldPanel:
		return "Fixed Income / Government"
	default:
		return "Other"
	}
}
