// internal/domain/analytics/entity.go
package analytics

// CategorySpend is one slice of the per-category breakdown over Active
// subscriptions.
type CategorySpend struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Summary is the dashboard analytics payload. TotalMonthlySpend counts
// Active subscriptions only, with yearly amounts prorated to a twelfth.
type Summary struct {
	TotalMonthlySpend float64         `json:"totalMonthlySpend"`
	CategoryBreakdown []CategorySpend `json:"categoryBreakdown"`
	StatusCounts      []StatusCount   `json:"statusCounts"`
}
