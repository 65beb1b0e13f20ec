package models

// CriterionOutcome records one criterion evaluation.
type CriterionOutcome struct {
	Name   string   `json:"name"`
	Left   *float64 `json:"left,omitempty"`
	Right  *float64 `json:"right,omitempty"`
	Passed bool     `json:"passed"`
}

// ScreenResult is the evaluation of a screen for one symbol.
type ScreenResult struct {
	Symbol   string             `json:"symbol"`
	Passed   bool               `json:"passed"`
	Outcomes []CriterionOutcome `json:"outcomes"`
}
