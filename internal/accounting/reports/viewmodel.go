package reports

// TrialBalanceView is the API and CLI payload for a trial balance.
type TrialBalanceView struct {
	AsOf     string              `json:"as_of"`
	Rows     []AccountBalance    `json:"rows"`
	Grouped  GroupedTrialBalance `json:"grouped"`
	Equation Equation            `json:"equation"`
}

// NewTrialBalanceView flattens tb for rendering.
func NewTrialBalanceView(tb TrialBalance) TrialBalanceView {
	return TrialBalanceView{
		AsOf:     tb.AsOf.Format("2006-01-02"),
		Rows:     tb.Rows(),
		Grouped:  BuildTrialBalance(tb),
		Equation: tb.Equation(),
	}
}
