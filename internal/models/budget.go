package models

// BudgetStatus describes how a budget line compares to its allocation.
type BudgetStatus string

const (
	BudgetOnTrack     BudgetStatus = "on-track"
	BudgetOverBudget  BudgetStatus = "over-budget"
	BudgetUnderBudget BudgetStatus = "under-budget"
)

// Valid reports whether s is one of the known statuses.
func (s BudgetStatus) Valid() bool {
	switch s {
	case BudgetOnTrack, BudgetOverBudget, BudgetUnderBudget:
		return true
	}
	return false
}

// BudgetLineItem is the budget row for one category.
type BudgetLineItem struct {
	// Category is the category this row tracks.
	Category string `json:"category"`

	// Allocated is the amount set aside for the category.
	Allocated float64 `json:"allocated"`

	// Spent is derived from the selected vendor's price estimate.
	// It is 0 when no vendor is selected.
	Spent float64 `json:"spent"`

	// Status compares spent against allocated.
	Status BudgetStatus `json:"status"`

	// VendorID references the selected Vendor, if any.
	// The vendor's category must match Category.
	VendorID string `json:"vendorId,omitempty"`
}

// HasVendor reports whether a vendor is selected for this line.
func (b BudgetLineItem) HasVendor() bool {
	return b.VendorID != ""
}
