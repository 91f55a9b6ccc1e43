package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/mmynk/planboard/internal/models"
)

func TestTotalSpent(t *testing.T) {
	tests := []struct {
		name   string
		budget []models.BudgetLineItem
		want   float64
	}{
		{
			name: "one selected line and one unset",
			budget: []models.BudgetLineItem{
				{Category: models.CategoryPhotography, Spent: 3500, VendorID: "2"},
				{Category: models.CategoryVenue},
			},
			want: 3500,
		},
		{
			name: "stale spent without vendor is ignored",
			budget: []models.BudgetLineItem{
				{Category: models.CategoryVenue, Spent: 18000},
				{Category: models.CategoryCatering, Spent: 1200, VendorID: "c1"},
			},
			want: 1200,
		},
		{
			name:   "empty budget",
			budget: nil,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalSpent(tt.budget)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("TotalSpent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayBudget(t *testing.T) {
	vendors := []models.Vendor{
		{ID: "1", Category: models.CategoryVenue, PriceEstimate: 18000},
		{ID: "2", Category: models.CategoryPhotography, PriceEstimate: 3500},
		{ID: "3", Category: models.CategoryCatering, PriceEstimate: 9000},
	}
	categories := []string{models.CategoryCatering, models.CategoryPhotography, models.CategoryVenue, models.CategoryCake}
	budget := []models.BudgetLineItem{
		{Category: models.CategoryPhotography, VendorID: "2"},
		{Category: models.CategoryVenue, VendorID: "1"},
		// vendor 2 is not a catering vendor, so this selection does not count
		{Category: models.CategoryCatering, VendorID: "2"},
	}

	rows := DisplayBudget(categories, budget, vendors)

	if len(rows) != len(categories) {
		t.Fatalf("expected %d rows, got %d", len(categories), len(rows))
	}

	wantOrder := []string{models.CategoryVenue, models.CategoryPhotography, models.CategoryCatering, models.CategoryCake}
	for i, want := range wantOrder {
		if rows[i].Category != want {
			t.Errorf("row %d: category = %q, want %q", i, rows[i].Category, want)
		}
	}
	if rows[0].Spent != 18000 || rows[0].VendorID != "1" {
		t.Errorf("venue row = %+v, want spent 18000 from vendor 1", rows[0])
	}
	if rows[2].VendorID != "" || rows[2].Spent != 0 {
		t.Errorf("catering row should have no valid selection, got %+v", rows[2])
	}

	slices := ChartSlices(rows)
	if len(slices) != 2 {
		t.Errorf("expected 2 chart slices, got %d", len(slices))
	}
}

func TestSelectVendor(t *testing.T) {
	vendors := []models.Vendor{
		{ID: "1", Category: models.CategoryVenue, PriceEstimate: 18000},
		{ID: "2", Category: models.CategoryPhotography, PriceEstimate: 3500},
	}
	budget := []models.BudgetLineItem{
		{Category: models.CategoryVenue, Status: models.BudgetOnTrack},
	}

	t.Run("selects existing line", func(t *testing.T) {
		updated, err := SelectVendor(budget, vendors, models.CategoryVenue, "1")
		if err != nil {
			t.Fatalf("SelectVendor failed: %v", err)
		}
		if updated[0].VendorID != "1" || updated[0].Spent != 18000 {
			t.Errorf("unexpected line: %+v", updated[0])
		}
		if budget[0].VendorID != "" {
			t.Error("input budget was mutated")
		}
	})

	t.Run("creates missing line", func(t *testing.T) {
		updated, err := SelectVendor(budget, vendors, models.CategoryPhotography, "2")
		if err != nil {
			t.Fatalf("SelectVendor failed: %v", err)
		}
		if len(updated) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(updated))
		}
		if updated[1].Category != models.CategoryPhotography || updated[1].Spent != 3500 {
			t.Errorf("unexpected new line: %+v", updated[1])
		}
	})

	t.Run("empty id clears selection", func(t *testing.T) {
		selected, _ := SelectVendor(budget, vendors, models.CategoryVenue, "1")
		cleared, err := SelectVendor(selected, vendors, models.CategoryVenue, "")
		if err != nil {
			t.Fatalf("SelectVendor failed: %v", err)
		}
		if cleared[0].HasVendor() || cleared[0].Spent != 0 {
			t.Errorf("selection not cleared: %+v", cleared[0])
		}
	})

	t.Run("category mismatch is rejected", func(t *testing.T) {
		if _, err := SelectVendor(budget, vendors, models.CategoryVenue, "2"); err == nil {
			t.Error("expected error selecting a photography vendor for the venue")
		}
	})

	t.Run("unknown vendor is rejected", func(t *testing.T) {
		if _, err := SelectVendor(budget, vendors, models.CategoryVenue, "nope"); err == nil {
			t.Error("expected error for unknown vendor")
		}
	})
}

func TestResetSelections(t *testing.T) {
	budget := []models.BudgetLineItem{
		{Category: models.CategoryVenue, Spent: 18000, VendorID: "1", Allocated: 20000},
	}
	reset := ResetSelections(budget)
	if reset[0].HasVendor() || reset[0].Spent != 0 {
		t.Errorf("selection not reset: %+v", reset[0])
	}
	if reset[0].Allocated != 20000 {
		t.Errorf("allocation should be kept, got %v", reset[0].Allocated)
	}
}

func TestDashboardFromDefaults(t *testing.T) {
	doc := models.DefaultDocument()
	doc.Guests = []models.Guest{
		{ID: "g1", Side: models.SideBride},
		{ID: "g2", Side: models.SideGroom},
		{ID: "g3", Side: models.SideGroom},
	}

	eventDate := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 8, 12, 0, 0, 0, time.UTC)

	stats := Dashboard(doc, eventDate, now)

	if stats.DaysLeft != 2 {
		t.Errorf("DaysLeft = %d, want 2 (1.5 days rounded up)", stats.DaysLeft)
	}
	if stats.TotalVendors != 3 {
		t.Errorf("TotalVendors = %d, want 3", stats.TotalVendors)
	}
	if stats.BookedVendors != 1 {
		t.Errorf("BookedVendors = %d, want 1", stats.BookedVendors)
	}
	if stats.TotalSpent != 3500 {
		t.Errorf("TotalSpent = %v, want 3500", stats.TotalSpent)
	}
	if stats.BrideGuests != 1 || stats.GroomGuests != 2 {
		t.Errorf("guest counts = %d/%d, want 1/2", stats.BrideGuests, stats.GroomGuests)
	}
}
