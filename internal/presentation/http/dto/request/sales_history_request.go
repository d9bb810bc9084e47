package request

// SalesFilterRequest is the body of opening a session and changing its filter.
// Dates are YYYY-MM-DD and only read for the custom range.
type SalesFilterRequest struct {
	Range         string `json:"range" binding:"omitempty,oneof=today week month quarter year custom"`
	StartDate     string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate       string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card mobile check"`
}

// SearchRequest sets the free-text query.
type SearchRequest struct {
	Query string `json:"query" binding:"max=200"`
}

// SortRequest selects a sort column.
type SortRequest struct {
	Key string `json:"key" binding:"required,oneof=timestamp identifier total profit"`
}

// PageRequest moves to a page; out of range pages are clamped.
type PageRequest struct {
	Page int `json:"page" binding:"required"`
}

// AutoRefreshRequest toggles interval reloads.
type AutoRefreshRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// TransactionRecordedRequest is posted by checkout when a sale commits.
type TransactionRecordedRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
	Reference     string `json:"reference" binding:"required,max=50"`
	Total         string `json:"total" binding:"required,numeric"`
}
