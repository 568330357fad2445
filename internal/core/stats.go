package core

import "github.com/shopspring/decimal"

// EntityStats is the {total, active, inactive} breakdown used by the
// users/categories/types stats endpoints.
type EntityStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// SavingsStats aggregates a user's avoided expenses.
type SavingsStats struct {
	TotalSavings  decimal.Decimal `json:"totalSavings"`
	Count         int64           `json:"count"`
	AverageAmount decimal.Decimal `json:"averageAmount"`
}

// MonthlySavings is one month's worth of avoided-expense totals.
type MonthlySavings struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// GroupedSavings sums avoided expenses per category or type. Name is nil
// for rows whose reference was cleared by a set-null delete.
type GroupedSavings struct {
	Name  *string         `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// DeficitStats aggregates a user's deficits. Amount sums are computed in
// application code over the fetched rows, matching the service contract.
type DeficitStats struct {
	TotalDeficits  int64           `json:"totalDeficits"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	AverageAmount  decimal.Decimal `json:"averageAmount"`
	ActiveDeficits int64           `json:"activeDeficits"`
}
