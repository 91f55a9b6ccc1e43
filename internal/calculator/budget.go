package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/planboard/internal/models"
)

// BudgetRow is one displayed budget row: the category, what is spent on it and
// which vendor is selected.
type BudgetRow struct {
	Category string
	Spent    float64
	VendorID string
}

// TotalSpent sums the spent amounts of every line item that has a vendor selected.
// Lines without a vendor are ignored even if they carry a stale spent amount.
func TotalSpent(budget []models.BudgetLineItem) float64 {
	total := 0.0
	for _, item := range budget {
		if !item.HasVendor() {
			continue
		}
		total += item.Spent
	}
	return total
}

// DisplayBudget computes one row per category.
// A row's spent amount is the price estimate of the selected vendor, and only
// counts if that vendor still exists in the same category.
// Rows are ordered by spent (highest first), then by category name.
func DisplayBudget(categories []string, budget []models.BudgetLineItem, vendors []models.Vendor) []BudgetRow {
	byCategory := make(map[string]models.BudgetLineItem, len(budget))
	for _, item := range budget {
		if _, exists := byCategory[item.Category]; !exists {
			byCategory[item.Category] = item
		}
	}

	rows := make([]BudgetRow, 0, len(categories))
	for _, cat := range categories {
		row := BudgetRow{Category: cat}
		if item, ok := byCategory[cat]; ok && item.HasVendor() {
			for _, v := range vendors {
				if v.ID == item.VendorID && v.Category == cat {
					row.Spent = v.PriceEstimate
					row.VendorID = v.ID
					break
				}
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Spent != rows[j].Spent {
			return rows[i].Spent > rows[j].Spent
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// SelectVendor returns a copy of budget with vendorID selected for category.
// An empty vendorID clears the selection. The line is created if the category
// has none yet. The vendor must exist and belong to the category.
func SelectVendor(budget []models.BudgetLineItem, vendors []models.Vendor, category, vendorID string) ([]models.BudgetLineItem, error) {
	spent := 0.0
	if vendorID != "" {
		var found bool
		for _, v := range vendors {
			if v.ID != vendorID {
				continue
			}
			if v.Category != category {
				return nil, fmt.Errorf("vendor %s is in category %q, not %q", vendorID, v.Category, category)
			}
			spent = v.PriceEstimate
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("vendor not found: %s", vendorID)
		}
	}

	updated := make([]models.BudgetLineItem, len(budget))
	copy(updated, budget)

	for i := range updated {
		if updated[i].Category != category {
			continue
		}
		updated[i].Spent = spent
		updated[i].VendorID = vendorID
		return updated, nil
	}

	return append(updated, models.BudgetLineItem{
		Category: category,
		Spent:    spent,
		Status:   models.BudgetOnTrack,
		VendorID: vendorID,
	}), nil
}

// ResetSelections clears every vendor selection and its spent amount.
func ResetSelections(budget []models.BudgetLineItem) []models.BudgetLineItem {
	updated := make([]models.BudgetLineItem, len(budget))
	for i, item := range budget {
		item.VendorID = ""
		item.Spent = 0
		updated[i] = item
	}
	return updated
}

// ChartSlices returns the rows with a non-zero spent amount, for the expense
// breakdown chart.
func ChartSlices(rows []BudgetRow) []BudgetRow {
	var out []BudgetRow
	for _, r := range rows {
		if r.Spent > 0 {
			out = append(out, r)
		}
	}
	return out
}
