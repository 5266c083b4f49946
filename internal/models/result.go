package models

// Status is the overall outcome of logging one utterance.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusClarification Status = "clarification_needed"
	StatusError         Status = "error"
)

// ItemStatus tells how a single item was handled.
type ItemStatus string

const (
	ItemFromDB         ItemStatus = "logged_from_db"
	ItemChainMatch     ItemStatus = "chain_match"
	ItemFuzzyMatch     ItemStatus = "fuzzy_match"
	ItemFoundExternal  ItemStatus = "found_in_off"
	ItemNewlyEstimated ItemStatus = "newly_estimated"
	ItemOverride       ItemStatus = "logged_override"
	ItemFailed         ItemStatus = "failed"
)

// ItemResult reports one item of a logged meal.
type ItemResult struct {
	Name   string           `json:"name"`
	Status ItemStatus       `json:"status"`
	Record *NutritionRecord `json:"record,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// LogResult is returned by LogMeal. Message carries the clarification
// question when Status is StatusClarification.
type LogResult struct {
	Status  Status       `json:"status"`
	Message string       `json:"message,omitempty"`
	Items   []ItemResult `json:"items,omitempty"`
	Date    string       `json:"date"`
	Totals  Totals       `json:"totals"`
}
